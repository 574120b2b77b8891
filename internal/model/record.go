package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Schema field keys. The order of Fields is the display and export order.
const (
	FieldName             = "name"
	FieldWebsite          = "website"
	FieldOwnership        = "ownership"
	FieldCountry          = "country"
	FieldBriefDescription = "brief_description"
	FieldServices         = "services"
	FieldHeadcount        = "headcount"
	FieldRevenue          = "revenue"

	// FieldTicker is the market identifier the extractor may report.
	FieldTicker = "ticker"
)

// SchemaFields are the required fields of a company record, in order.
var SchemaFields = []string{
	FieldName,
	FieldWebsite,
	FieldOwnership,
	FieldCountry,
	FieldBriefDescription,
	FieldServices,
	FieldHeadcount,
	FieldRevenue,
}

// Fields is every key a merged record carries: the schema plus extensions.
var Fields = append(append([]string{}, SchemaFields...), FieldTicker)

// IsField reports whether key belongs to the record schema.
func IsField(key string) bool {
	for _, f := range Fields {
		if f == key {
			return true
		}
	}
	return false
}

// Ownership values the extractor is asked to choose from. Advisory only.
var OwnershipValues = []string{
	"Private",
	"Public",
	"Subsidiary",
	"Acquired",
	"PE Backed",
	"VC Backed",
}

// Source labels an extraction by where its text came from.
type Source string

const (
	SourcePrimary   Source = "website"
	SourceSecondary Source = "linkedin"
)

// Candidate is a single-source extraction: a decoded JSON object that may be
// partial or carry placeholder strings.
type Candidate map[string]any

// Market data attribute keys.
const (
	MarketPrice            = "price"
	MarketPreviousClose    = "previous_close"
	MarketChangePercent    = "change_percent"
	MarketDayHigh          = "day_high"
	MarketDayLow           = "day_low"
	MarketFiftyTwoWeekHigh = "fifty_two_week_high"
	MarketFiftyTwoWeekLow  = "fifty_two_week_low"
	MarketVolume           = "volume"
	MarketCap              = "market_cap"
)

// MarketKeys lists market attributes in display order.
var MarketKeys = []string{
	MarketPrice,
	MarketPreviousClose,
	MarketChangePercent,
	MarketDayHigh,
	MarketDayLow,
	MarketFiftyTwoWeekHigh,
	MarketFiftyTwoWeekLow,
	MarketVolume,
	MarketCap,
}

// MarketData holds numeric stock-market attributes keyed by the Market* constants.
type MarketData map[string]float64

// Record is the canonical, merged company record.
type Record struct {
	Values       map[string]any `json:"values"`
	Symbol       string         `json:"symbol,omitempty"`
	Market       MarketData     `json:"market,omitempty"`
	SourceURL    string         `json:"source_url"`
	SecondaryURL string         `json:"secondary_url,omitempty"`
}

// NewRecord returns a record with every field present and nil.
func NewRecord() Record {
	values := make(map[string]any, len(Fields))
	for _, f := range Fields {
		values[f] = nil
	}
	return Record{Values: values}
}

// Get returns the raw value of a field.
func (r Record) Get(key string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[key]
}

// String returns the display form of a field.
func (r Record) String(key string) string {
	return FormatValue(r.Get(key))
}

// IsEmpty reports whether no field carries a value.
func (r Record) IsEmpty() bool {
	for _, v := range r.Values {
		if v != nil {
			return false
		}
	}
	return true
}

// FormatValue renders a decoded JSON value for tables and exports.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := FormatValue(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// FormatMarket renders a market attribute, or "" when it is missing.
func (m MarketData) FormatMarket(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

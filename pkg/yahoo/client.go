// Package yahoo provides a client for the public Yahoo Finance chart and
// search endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// QuoteTypeEquity marks common stock in search results.
const QuoteTypeEquity = "EQUITY"

// Client defines the Yahoo Finance operations used for enrichment.
type Client interface {
	// Chart returns the latest quote metadata for a symbol.
	Chart(ctx context.Context, symbol string) (*ChartMeta, error)
	// Search finds securities matching a free-text company name.
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// ChartMeta is the meta block of a chart result.
type ChartMeta struct {
	Currency             string  `json:"currency"`
	Symbol               string  `json:"symbol"`
	ExchangeName         string  `json:"exchangeName"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	PreviousClose        float64 `json:"previousClose"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  float64 `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
	MarketCap            float64 `json:"marketCap"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta ChartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// SearchResponse is the parsed search result list.
type SearchResponse struct {
	Quotes []Quote `json:"quotes"`
}

// Quote is a single search hit.
type Quote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
	Exchange  string `json:"exchange"`
}

// FirstEquity returns the first equity quote, or false when none matched.
func (r *SearchResponse) FirstEquity() (Quote, bool) {
	if r == nil {
		return Quote{}, false
	}
	for _, q := range r.Quotes {
		if strings.EqualFold(q.QuoteType, QuoteTypeEquity) && q.Symbol != "" {
			return q, true
		}
	}
	return Quote{}, false
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header. Yahoo rejects requests without one.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a Yahoo Finance client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: "Mozilla/5.0",
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Chart(ctx context.Context, symbol string) (*ChartMeta, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, eris.New("yahoo: empty symbol")
	}

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, eris.Wrapf(err, "yahoo: chart %s", symbol)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "yahoo: unmarshal chart")
	}
	if resp.Chart.Error != nil {
		return nil, eris.Errorf("yahoo: chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, eris.Errorf("yahoo: chart %s: no data in response", symbol)
	}

	meta := resp.Chart.Result[0].Meta
	return &meta, nil
}

func (c *httpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "5")
	params.Set("newsCount", "0")

	body, err := c.get(ctx, c.baseURL+"/v1/finance/search?"+params.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "yahoo: search")
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "yahoo: unmarshal search")
	}
	return &resp, nil
}

func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

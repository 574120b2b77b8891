package enrich

import (
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DomainTable maps a registrable domain to a market symbol.
type DomainTable interface {
	Lookup(domain string) (string, bool)
}

// StaticDomainTable is an in-memory DomainTable. Keys are lower-case
// registrable domains.
type StaticDomainTable map[string]string

// Lookup returns the symbol for a domain.
func (t StaticDomainTable) Lookup(domain string) (string, bool) {
	sym, ok := t[strings.ToLower(strings.TrimSpace(domain))]
	if !ok || sym == "" {
		return "", false
	}
	return sym, true
}

var defaultDomains = map[string]string{
	"apple.com":      "AAPL",
	"microsoft.com":  "MSFT",
	"google.com":     "GOOGL",
	"abc.xyz":        "GOOGL",
	"amazon.com":     "AMZN",
	"meta.com":       "META",
	"facebook.com":   "META",
	"tesla.com":      "TSLA",
	"nvidia.com":     "NVDA",
	"ibm.com":        "IBM",
	"oracle.com":     "ORCL",
	"salesforce.com": "CRM",
	"intel.com":      "INTC",
	"netflix.com":    "NFLX",
	"adobe.com":      "ADBE",
	"cisco.com":      "CSCO",
}

// DefaultDomainTable returns a fresh copy of the built-in table.
func DefaultDomainTable() StaticDomainTable {
	t := make(StaticDomainTable, len(defaultDomains))
	for d, s := range defaultDomains {
		t[d] = s
	}
	return t
}

// LoadDomainTable reads a YAML mapping of domain to symbol and merges it over
// the built-in table. Entries with an empty symbol remove a built-in.
func LoadDomainTable(path string) (StaticDomainTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: read domain table %s", path)
	}

	var entries map[string]string
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, eris.Wrapf(err, "enrich: parse domain table %s", path)
	}

	t := DefaultDomainTable()
	for d, s := range entries {
		d = RegistrableDomain(d)
		if d == "" {
			continue
		}
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			delete(t, d)
			continue
		}
		t[d] = s
	}
	return t, nil
}

// Public second-level labels under which registrable domains take three
// labels, e.g. acme.co.uk.
var publicSecondLevels = map[string]bool{
	"co.uk": true, "org.uk": true, "ac.uk": true, "gov.uk": true, "ltd.uk": true, "plc.uk": true,
	"com.au": true, "net.au": true, "org.au": true,
	"co.nz": true, "co.jp": true, "co.kr": true, "co.in": true, "co.za": true,
	"com.br": true, "com.mx": true, "com.ar": true, "com.cn": true, "com.sg": true,
	"com.tr": true, "com.hk": true, "com.tw": true,
}

// RegistrableDomain reduces a URL or host to its registrable domain:
// https://www.shop.acme.co.uk:8443/x becomes acme.co.uk. Returns "" when no
// host can be found.
func RegistrableDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	host = strings.TrimPrefix(host, "www.")

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	n := 2
	if publicSecondLevels[strings.Join(labels[len(labels)-2:], ".")] {
		n = 3
	}
	return strings.Join(labels[len(labels)-n:], ".")
}

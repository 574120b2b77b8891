// Package enrich decides which market symbol a company record refers to and
// resolves market data for it.
package enrich

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/record"
)

// DefaultTickerPlaceholders are the ticker answers treated as absent.
func DefaultTickerPlaceholders() record.PlaceholderSet {
	return record.NewPlaceholderSet("data not provided", "not provided", "n/a")
}

// Gate picks the market symbol for a record from three tiers, in order: the
// extracted ticker, a name-based lookup, and the domain table. Nil
// collaborators skip their tier.
type Gate struct {
	Lookup       SymbolLookup
	Domains      DomainTable
	Placeholders record.PlaceholderSet
}

// ShouldEnrich returns the symbol to enrich with, or "" when none resolves.
// Lookup failures are logged and swallowed.
func (g *Gate) ShouldEnrich(ctx context.Context, rec model.Record) string {
	sym, _ := g.Decide(ctx, rec)
	return sym
}

// Decide is ShouldEnrich that also reports a failed name lookup. The error
// never stops the domain-table tier from running.
func (g *Gate) Decide(ctx context.Context, rec model.Record) (string, error) {
	placeholders := g.Placeholders
	if placeholders == nil {
		placeholders = DefaultTickerPlaceholders()
	}

	if ticker := rec.String(model.FieldTicker); !placeholders.Contains(ticker) {
		return normalizeSymbol(ticker), nil
	}

	var lookupErr error
	name := rec.String(model.FieldName)
	if g.Lookup != nil && record.NonEmpty(name, record.DefaultPlaceholders()) {
		sym, err := g.Lookup.Lookup(ctx, name)
		switch {
		case err != nil:
			lookupErr = eris.Wrapf(err, "enrich: lookup %q", name)
			zap.L().Debug("enrich: symbol lookup failed",
				zap.String("name", name),
				zap.String("lookup", g.Lookup.Name()),
				zap.Error(err),
			)
		case strings.TrimSpace(sym) != "":
			return normalizeSymbol(sym), nil
		}
	}

	if g.Domains != nil {
		if sym, ok := g.Domains.Lookup(RegistrableDomain(rec.SourceURL)); ok {
			return normalizeSymbol(sym), lookupErr
		}
	}
	return "", lookupErr
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

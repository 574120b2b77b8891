package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/pkg/perplexity"
	"github.com/sells-group/company-profiler/pkg/yahoo"
)

// SymbolLookup resolves a company name to a market symbol. An empty symbol
// with a nil error means no match.
type SymbolLookup interface {
	Lookup(ctx context.Context, name string) (string, error)
	Name() string
}

// YahooLookup returns the first equity match of a Yahoo Finance search.
type YahooLookup struct {
	Client yahoo.Client
}

func (y *YahooLookup) Name() string { return "yahoo" }

// Lookup searches Yahoo Finance for name.
func (y *YahooLookup) Lookup(ctx context.Context, name string) (string, error) {
	resp, err := y.Client.Search(ctx, name)
	if err != nil {
		return "", eris.Wrap(err, "enrich: yahoo lookup")
	}
	q, ok := resp.FirstEquity()
	if !ok {
		return "", nil
	}
	return q.Symbol, nil
}

// PerplexityLookup asks Perplexity for a bare ticker symbol.
type PerplexityLookup struct {
	Client perplexity.Client
}

func (p *PerplexityLookup) Name() string { return "perplexity" }

var tickerRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)

// Lookup asks for the ticker of name. NONE and answers that do not look
// like a ticker count as no match.
func (p *PerplexityLookup) Lookup(ctx context.Context, name string) (string, error) {
	resp, err := p.Client.Ask(ctx, perplexity.Question{
		Instructions: "Answer with a stock ticker symbol only, or NONE.",
		Prompt: fmt.Sprintf("What is the primary stock ticker symbol of the company %q? "+
			"Answer NONE if it is not publicly traded.", name),
		MaxTokens: 10,
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: perplexity lookup")
	}

	answer := strings.ToUpper(strings.Trim(resp, " \t\n`'\".$"))
	if answer == "NONE" || !tickerRe.MatchString(answer) {
		return "", nil
	}
	return answer, nil
}

// Package pipeline runs company lookups: fetch, extract, merge, enrich and
// persist, one URL at a time.
package pipeline

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/config"
	"github.com/sells-group/company-profiler/internal/enrich"
	"github.com/sells-group/company-profiler/internal/extract"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/record"
	"github.com/sells-group/company-profiler/internal/scrape"
	"github.com/sells-group/company-profiler/internal/store"
)

var errEmptyText = eris.New("pipeline: page has no text")

// Deps are the collaborators of a Processor. Secondary, Gate, Resolver and
// Store are optional; a nil collaborator skips its step.
type Deps struct {
	Primary   scrape.Scraper
	Secondary scrape.Scraper
	Extractor extract.Extractor
	Gate      *enrich.Gate
	Resolver  enrich.Resolver
	Store     store.Store
}

// Options tune a Processor.
type Options struct {
	// Language is the BCP 47 tag free-text answers are requested in.
	Language string
	// Placeholders are the merge placeholders. Nil means the defaults.
	Placeholders record.PlaceholderSet
	// EnrichEnabled turns on market-data enrichment.
	EnrichEnabled bool
	// SkipExisting returns the stored record for a URL instead of fetching.
	SkipExisting bool
	// MaxChars truncates page text before extraction. Zero disables it.
	MaxChars int
}

// Processor turns company URLs into canonical records.
type Processor struct {
	deps Deps
	opts Options
}

// New creates a Processor. Primary and Extractor are required.
func New(deps Deps, opts Options) *Processor {
	if opts.Placeholders == nil {
		opts.Placeholders = record.DefaultPlaceholders()
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Processor{deps: deps, opts: opts}
}

// Process looks up a single company URL. Sub-step failures are recorded on the
// result and never returned; a failed primary fetch leaves Record nil.
func (p *Processor) Process(ctx context.Context, rawURL string) model.LookupResult {
	targetURL := NormalizeURL(rawURL)
	result := model.LookupResult{URL: targetURL}
	log := zap.L().With(zap.String("url", targetURL))

	if p.opts.SkipExisting && p.deps.Store != nil {
		existing, err := p.deps.Store.LatestByURL(ctx, targetURL)
		if err != nil {
			log.Warn("pipeline: existing record check failed", zap.Error(err))
		}
		if existing != nil {
			log.Info("pipeline: using stored record")
			result.Record = existing
			result.Cached = true
			return result
		}
	}

	primary, err := p.deps.Primary.Scrape(ctx, targetURL)
	if err != nil {
		log.Warn("pipeline: primary fetch failed", zap.Error(err))
		result.Fail(model.StepFetchPrimary, model.ErrorFetch, err)
		return result
	}
	log.Debug("pipeline: fetched primary page",
		zap.String("source", primary.Source),
		zap.Int("chars", len(primary.Page.Text)),
	)

	primaryCand := p.candidate(ctx, &result, primary.Page.Text, model.SourcePrimary, targetURL)

	var secondaryCand model.Candidate
	secondaryURL := scrape.FindSecondarySourceURL(primary.Page.Doc)
	switch {
	case secondaryURL == "":
		log.Debug("pipeline: no secondary source link")
	case p.deps.Secondary == nil:
		log.Debug("pipeline: secondary fetch disabled", zap.String("secondary_url", secondaryURL))
	default:
		secondary, err := p.deps.Secondary.Scrape(ctx, secondaryURL)
		if err != nil {
			log.Info("pipeline: secondary fetch failed",
				zap.String("secondary_url", secondaryURL),
				zap.Error(err),
			)
			result.Fail(model.StepFetchSecondary, model.ErrorFetch, err)
		} else {
			secondaryCand = p.candidate(ctx, &result, secondary.Page.Text, model.SourceSecondary, targetURL)
		}
	}

	rec := record.Merge(primaryCand, secondaryCand, p.opts.Placeholders)
	rec.SourceURL = targetURL
	rec.SecondaryURL = secondaryURL

	p.enrich(ctx, &result, &rec)

	if p.deps.Store != nil {
		if _, err := p.deps.Store.SaveRecord(ctx, rec); err != nil {
			log.Error("pipeline: persist failed", zap.Error(err))
			result.Fail(model.StepPersist, model.ErrorPersist, err)
		} else {
			result.Persisted = true
		}
	}

	result.Record = &rec
	log.Info("pipeline: lookup complete",
		zap.String("name", rec.String(model.FieldName)),
		zap.Int("failed_steps", len(result.Steps)),
	)
	return result
}

// candidate extracts, sanitizes, parses and validates one source's text.
// Failures leave an empty candidate and are recorded on result.
func (p *Processor) candidate(ctx context.Context, result *model.LookupResult, text string, source model.Source, website string) model.Candidate {
	extractStep, parseStep := model.StepExtractPrimary, model.StepParsePrimary
	if source == model.SourceSecondary {
		extractStep, parseStep = model.StepExtractSecondary, model.StepParseSecondary
	}

	text = strings.TrimSpace(text)
	if text == "" {
		result.Fail(extractStep, model.ErrorExtract, errEmptyText)
		return model.Candidate{}
	}

	raw, err := p.deps.Extractor.Extract(ctx, extract.Request{
		Text:     truncate(text, p.opts.MaxChars),
		Source:   source,
		Website:  website,
		Language: p.opts.Language,
	})
	if err != nil {
		zap.L().Warn("pipeline: extraction failed",
			zap.String("url", website),
			zap.String("source", string(source)),
			zap.String("extractor", p.deps.Extractor.Name()),
			zap.Error(err),
		)
		result.Fail(extractStep, model.ErrorExtract, err)
		return model.Candidate{}
	}

	cand, err := record.TryParse(record.Sanitize(&raw))
	if err != nil {
		zap.L().Warn("pipeline: unparseable extraction",
			zap.String("url", website),
			zap.String("source", string(source)),
			zap.Error(err),
		)
		result.Fail(parseStep, model.ErrorParse, err)
		return model.Candidate{}
	}
	return record.Validate(cand)
}

// enrich adds market data to rec when a symbol resolves.
func (p *Processor) enrich(ctx context.Context, result *model.LookupResult, rec *model.Record) {
	if !p.opts.EnrichEnabled || p.deps.Gate == nil || p.deps.Resolver == nil {
		return
	}

	symbol, err := p.deps.Gate.Decide(ctx, *rec)
	if err != nil {
		result.Fail(model.StepSymbolLookup, model.ErrorLookup, err)
	}
	if symbol == "" {
		return
	}

	md, err := p.deps.Resolver.Resolve(ctx, symbol)
	if err != nil {
		zap.L().Warn("pipeline: enrichment failed",
			zap.String("url", rec.SourceURL),
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		result.Fail(model.StepEnrich, model.ErrorEnrich, err)
		return
	}
	rec.Symbol = symbol
	rec.Market = md
}

// ProcessBatch processes up to config.MaxURLs URLs sequentially. Blank entries
// are dropped first. A cancelled context stops the batch between URLs and the
// results gathered so far are returned with the error.
func (p *Processor) ProcessBatch(ctx context.Context, urls []string) ([]model.LookupResult, error) {
	batch := CleanBatch(urls)
	if len(batch) > config.MaxURLs {
		return nil, eris.Errorf("pipeline: batch of %d urls exceeds limit of %d", len(batch), config.MaxURLs)
	}

	results := make([]model.LookupResult, 0, len(batch))
	for _, u := range batch {
		if err := ctx.Err(); err != nil {
			return results, eris.Wrap(err, "pipeline: batch cancelled")
		}
		results = append(results, p.Process(ctx, u))
	}
	return results, nil
}

// CleanBatch trims the inputs and drops blank ones, keeping order.
func CleanBatch(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// NormalizeURL trims raw and adds an https scheme when none is given.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

// Records returns the records of results that produced one, in order.
func Records(results []model.LookupResult) []model.Record {
	out := make([]model.Record, 0, len(results))
	for _, r := range results {
		if r.Record != nil {
			out = append(out, *r.Record)
		}
	}
	return out
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > limit-(utf8.UTFMax-1) && cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if !utf8.RuneStart(s[cut]) {
		cut = limit
	}
	return s[:cut]
}

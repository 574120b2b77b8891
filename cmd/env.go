package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/cache"
	"github.com/sells-group/company-profiler/internal/db"
	"github.com/sells-group/company-profiler/internal/enrich"
	"github.com/sells-group/company-profiler/internal/extract"
	"github.com/sells-group/company-profiler/internal/pipeline"
	"github.com/sells-group/company-profiler/internal/record"
	"github.com/sells-group/company-profiler/internal/scrape"
	"github.com/sells-group/company-profiler/internal/store"
	anthropicpkg "github.com/sells-group/company-profiler/pkg/anthropic"
	"github.com/sells-group/company-profiler/pkg/jina"
	"github.com/sells-group/company-profiler/pkg/perplexity"
	"github.com/sells-group/company-profiler/pkg/yahoo"
)

// cacheKeyPrefix namespaces Redis keys written by this tool.
const cacheKeyPrefix = "company-profiler:"

// lookupEnv holds the store and the processor used by the lookup and serve
// commands.
type lookupEnv struct {
	Store     store.Store
	Processor *pipeline.Processor
	cache     *cache.RedisCache
}

// Close releases resources held by the environment.
func (e *lookupEnv) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured store without migrating it.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "company_profiler.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, db.PoolConfig{})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens and migrates the configured store.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initLookupEnv validates the config for mode and wires every collaborator
// of the processor. Offline mode uses the stub extractor and skips
// enrichment. Callers should defer env.Close().
func initLookupEnv(ctx context.Context, mode string, offline bool) (*lookupEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	ex, err := buildExtractor(ctx, offline)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &lookupEnv{Store: st}

	timeout := time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	primary := scrape.NewLocalScraper(
		scrape.WithTimeout(timeout),
		scrape.WithUserAgent(cfg.Fetch.UserAgent),
	)

	deps := pipeline.Deps{
		Primary:   primary,
		Secondary: buildSecondary(primary, timeout),
		Extractor: ex,
		Store:     st,
	}

	enrichEnabled := cfg.Enrich.Enabled && !offline
	if enrichEnabled {
		gate, resolver, rc, err := buildEnrichment(ctx, timeout)
		if err != nil {
			env.Close()
			return nil, err
		}
		deps.Gate = gate
		deps.Resolver = resolver
		env.cache = rc
	}

	env.Processor = pipeline.New(deps, pipeline.Options{
		Language:      cfg.Extract.Language,
		Placeholders:  placeholderSet(cfg.Merge.Placeholders),
		EnrichEnabled: enrichEnabled,
		SkipExisting:  cfg.Store.SkipExisting,
		MaxChars:      cfg.Extract.MaxChars,
	})
	return env, nil
}

// buildExtractor returns the configured extractor. A missing credential is
// logged; the extractor is still built and every call fails open.
func buildExtractor(ctx context.Context, offline bool) (extract.Extractor, error) {
	if offline || cfg.Extract.Provider == "stub" {
		zap.L().Info("using offline stub extractor")
		return extract.NewStubExtractor(), nil
	}

	key := cfg.ExtractorKey()
	if key == "" {
		zap.L().Warn("no api key for extract provider, every extraction will come back empty",
			zap.String("provider", cfg.Extract.Provider),
		)
	}

	switch cfg.Extract.Provider {
	case "gemini":
		return extract.NewGeminiExtractor(ctx, key, extract.GeminiConfig{
			Model:       cfg.Gemini.Model,
			MaxTokens:   cfg.Extract.MaxTokens,
			Temperature: cfg.Extract.Temperature,
		})
	default:
		var client anthropicpkg.Client
		if key != "" {
			client = anthropicpkg.NewClient(key)
		}
		return extract.NewAnthropicExtractor(client, extract.AnthropicConfig{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   cfg.Extract.MaxTokens,
			Temperature: cfg.Extract.Temperature,
		}), nil
	}
}

// buildSecondary returns the LinkedIn page fetcher: the primary scraper,
// then Jina Reader when enabled, each rejecting login walls.
func buildSecondary(primary scrape.Scraper, timeout time.Duration) scrape.Scraper {
	scrapers := []scrape.Scraper{scrape.GuardLoginWall(primary)}
	if cfg.Fetch.UseJina {
		jc := jina.NewClient(cfg.Jina.Key,
			jina.WithBaseURL(cfg.Jina.BaseURL),
			jina.WithTimeout(timeout),
		)
		scrapers = append(scrapers, scrape.GuardLoginWall(scrape.NewJinaScraper(jc)))
	}
	return scrape.NewChain(scrapers...)
}

// buildEnrichment wires the enrichment gate and the market data resolver.
// The Redis cache is optional; an unreachable server is logged and skipped.
func buildEnrichment(ctx context.Context, timeout time.Duration) (*enrich.Gate, enrich.Resolver, *cache.RedisCache, error) {
	domains := enrich.DefaultDomainTable()
	if cfg.Enrich.DomainTable != "" {
		loaded, err := enrich.LoadDomainTable(cfg.Enrich.DomainTable)
		if err != nil {
			return nil, nil, nil, err
		}
		domains = loaded
	}

	yc := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL),
		yahoo.WithUserAgent(cfg.Fetch.UserAgent),
	)

	var lookup enrich.SymbolLookup
	switch cfg.Enrich.SymbolLookup {
	case "none":
	case "perplexity":
		lookup = &enrich.PerplexityLookup{Client: perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
			perplexity.WithTimeout(timeout),
		)}
	default:
		lookup = &enrich.YahooLookup{Client: yc}
	}

	gate := &enrich.Gate{
		Lookup:       lookup,
		Domains:      domains,
		Placeholders: placeholderSet(cfg.Enrich.TickerPlaceholders),
	}

	var resolver enrich.Resolver = &enrich.YahooResolver{Client: yc}
	rc := openCache(ctx)
	if rc != nil {
		resolver = &enrich.CachedResolver{
			Next:  resolver,
			Cache: rc,
			TTL:   time.Duration(cfg.Enrich.CacheTTLMins) * time.Minute,
		}
	}
	return gate, resolver, rc, nil
}

// openCache connects to Redis when configured. Failures disable caching.
func openCache(ctx context.Context) *cache.RedisCache {
	if cfg.Cache.RedisURL == "" {
		return nil
	}
	rc, err := cache.NewRedisCache(cfg.Cache.RedisURL, cacheKeyPrefix)
	if err != nil {
		zap.L().Warn("redis cache disabled", zap.Error(err))
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		zap.L().Warn("redis cache unreachable, continuing without it", zap.Error(err))
		_ = rc.Close()
		return nil
	}
	zap.L().Info("market data cache enabled")
	return rc
}

// placeholderSet builds a set from configured values; an empty list means
// the package defaults.
func placeholderSet(values []string) record.PlaceholderSet {
	if len(values) == 0 {
		return nil
	}
	return record.NewPlaceholderSet(values...)
}

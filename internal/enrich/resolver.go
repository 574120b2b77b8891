package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/cache"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/pkg/yahoo"
)

// Resolver fetches market data for a symbol.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (model.MarketData, error)
}

// YahooResolver reads the latest quote from the Yahoo Finance chart endpoint.
type YahooResolver struct {
	Client yahoo.Client
}

// Resolve returns the market snapshot for symbol. Attributes Yahoo does not
// report are left out.
func (y *YahooResolver) Resolve(ctx context.Context, symbol string) (model.MarketData, error) {
	meta, err := y.Client.Chart(ctx, symbol)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: resolve")
	}
	if meta.RegularMarketPrice <= 0 {
		return nil, eris.Errorf("enrich: resolve %s: no price", symbol)
	}

	md := model.MarketData{model.MarketPrice: meta.RegularMarketPrice}
	prev := meta.ChartPreviousClose
	if prev <= 0 {
		prev = meta.PreviousClose
	}
	if prev > 0 {
		md[model.MarketPreviousClose] = prev
		md[model.MarketChangePercent] = (meta.RegularMarketPrice - prev) / prev * 100
	}
	setPositive(md, model.MarketDayHigh, meta.RegularMarketDayHigh)
	setPositive(md, model.MarketDayLow, meta.RegularMarketDayLow)
	setPositive(md, model.MarketFiftyTwoWeekHigh, meta.FiftyTwoWeekHigh)
	setPositive(md, model.MarketFiftyTwoWeekLow, meta.FiftyTwoWeekLow)
	setPositive(md, model.MarketVolume, meta.RegularMarketVolume)
	setPositive(md, model.MarketCap, meta.MarketCap)
	return md, nil
}

func setPositive(md model.MarketData, key string, v float64) {
	if v > 0 {
		md[key] = v
	}
}

// CachedResolver memoizes another Resolver.
type CachedResolver struct {
	Next  Resolver
	Cache cache.Cache
	TTL   time.Duration
}

// Resolve returns a cached snapshot when one is fresh, else asks Next.
func (c *CachedResolver) Resolve(ctx context.Context, symbol string) (model.MarketData, error) {
	return cache.Memoize(ctx, c.Cache, "market:"+symbol, c.TTL, func(ctx context.Context) (model.MarketData, error) {
		return c.Next.Resolve(ctx, symbol)
	})
}

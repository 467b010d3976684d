package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"assetwatch/internal/application/port"
	"assetwatch/internal/domain/model"
)

// PriceService is the single entry point for "what is asset X worth right
// now". It consults the cache, dispatches to the adapter for the query's
// kind, applies the retry policy and converts exhausted failures into the
// terminal PriceUnavailableError. It knows nothing about users or storage.
type PriceService struct {
	cache   port.QuoteCache
	sources map[model.AssetKind]port.Source

	ttls       map[model.AssetKind]time.Duration
	defaultTTL time.Duration

	maxAttempts int
	retryWait   time.Duration

	fx         port.Source
	fxFallback decimal.Decimal
}

type PriceServiceDeps struct {
	Cache   port.QuoteCache
	Sources map[model.AssetKind]port.Source

	// TTLs overrides the cache lifetime per kind; DefaultTTL covers the rest.
	TTLs       map[model.AssetKind]time.Duration
	DefaultTTL time.Duration

	// MaxAttempts caps total fetch attempts (retries only follow
	// ErrSourceUnreachable). RetryWait is the pause between attempts.
	MaxAttempts int
	RetryWait   time.Duration

	// FX quotes USD/JPY; FXFallbackRate is returned when it fails.
	FX             port.Source
	FXFallbackRate decimal.Decimal
}

func NewPriceService(deps PriceServiceDeps) *PriceService {
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = 2
	}
	if deps.DefaultTTL <= 0 {
		deps.DefaultTTL = 5 * time.Minute
	}
	return &PriceService{
		cache:       deps.Cache,
		sources:     deps.Sources,
		ttls:        deps.TTLs,
		defaultTTL:  deps.DefaultTTL,
		maxAttempts: deps.MaxAttempts,
		retryWait:   deps.RetryWait,
		fx:          deps.FX,
		fxFallback:  deps.FXFallbackRate,
	}
}

func (s *PriceService) ttlFor(kind model.AssetKind) time.Duration {
	if ttl, ok := s.ttls[kind]; ok && ttl > 0 {
		return ttl
	}
	return s.defaultTTL
}

// GetPrice returns the current quote for one asset, cached or fresh.
func (s *PriceService) GetPrice(ctx context.Context, q model.PriceQuery) (model.Quote, error) {
	if !q.Kind.Fetchable() {
		return model.Quote{}, &model.PriceUnavailableError{
			Kind: q.Kind, Symbol: q.Symbol, Err: model.ErrUnsupportedAsset,
		}
	}

	if quote, ok := s.cache.Get(ctx, q); ok {
		log.Debug().Str("kind", string(q.Kind)).Str("symbol", q.Symbol).Msg("cache hit")
		return quote, nil
	}

	src, ok := s.sources[q.Kind]
	if !ok {
		return model.Quote{}, &model.PriceUnavailableError{
			Kind: q.Kind, Symbol: q.Symbol, Err: model.ErrUnsupportedAsset,
		}
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		quote, err := src.Fetch(ctx, q.Symbol)
		if err == nil {
			s.cache.Put(ctx, q, quote, s.ttlFor(q.Kind))
			log.Info().
				Str("kind", string(q.Kind)).
				Str("symbol", q.Symbol).
				Str("source", src.Name()).
				Str("price", quote.CurrentPrice.String()).
				Msg("price fetched")
			return quote, nil
		}
		lastErr = err

		if errors.Is(err, model.ErrParseFailure) {
			// offending raw text rides inside the error for diagnosis
			log.Error().Err(err).
				Str("kind", string(q.Kind)).
				Str("symbol", q.Symbol).
				Msg("source response shape mismatch")
			break
		}
		if !errors.Is(err, model.ErrSourceUnreachable) {
			break
		}
		if attempt < s.maxAttempts {
			log.Warn().Err(err).
				Str("symbol", q.Symbol).
				Int("attempt", attempt).
				Dur("wait", s.retryWait).
				Msg("source unreachable, retrying")
			select {
			case <-ctx.Done():
				return model.Quote{}, &model.PriceUnavailableError{
					Kind: q.Kind, Symbol: q.Symbol, Err: ctx.Err(),
				}
			case <-time.After(s.retryWait):
			}
		}
	}

	return model.Quote{}, &model.PriceUnavailableError{Kind: q.Kind, Symbol: q.Symbol, Err: lastErr}
}

// USDJPY returns the cached dollar-yen rate, fetching on a miss. Failures
// fall back to the configured rate: consumers prefer a slightly stale
// conversion factor over an aborted valuation.
func (s *PriceService) USDJPY(ctx context.Context) decimal.Decimal {
	if s.fx == nil {
		return s.fxFallback
	}

	q := model.PriceQuery{Kind: model.KindFX, Symbol: "USDJPY"}
	if quote, ok := s.cache.Get(ctx, q); ok {
		return quote.CurrentPrice
	}

	quote, err := s.fx.Fetch(ctx, "USDJPY")
	if err != nil {
		log.Warn().Err(err).
			Str("fallback", s.fxFallback.String()).
			Msg("usd/jpy fetch failed, using fallback rate")
		return s.fxFallback
	}
	s.cache.Put(ctx, q, quote, s.ttlFor(model.KindFX))
	return quote.CurrentPrice
}

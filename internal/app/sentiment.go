package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
)

// SentimentResolver turns review text into a label. It never fails: every
// classifier error degrades to Mixed, and only successful classifications are cached.
type SentimentResolver struct {
	classifier domain.Classifier
	cache      domain.SentimentCache
	group      singleflight.Group
}

func NewSentimentResolver(c domain.Classifier, cache domain.SentimentCache) *SentimentResolver {
	return &SentimentResolver{classifier: c, cache: cache}
}

func (r *SentimentResolver) Resolve(ctx context.Context, text string) domain.Sentiment {
	s, _ := r.TryResolve(ctx, text)
	return s
}

// TryResolve is Resolve that also reports why a Mixed fallback was used.
// The label is always usable, even when err is non-nil.
func (r *SentimentResolver) TryResolve(ctx context.Context, text string) (domain.Sentiment, error) {
	if s, ok := r.cached(ctx, text); ok {
		observability.ObserveClassification("cached", s)
		return s, nil
	}

	// concurrent lookups for the same text share one upstream call
	v, err, _ := r.group.Do(text, func() (any, error) {
		if s, ok := r.cached(ctx, text); ok {
			return s, nil
		}
		s, err := r.classifier.Classify(ctx, text)
		if err != nil {
			r.logFailure(err, text)
			observability.ObserveClassification("fallback", domain.Mixed)
			return domain.Mixed, err
		}
		if err := r.cache.Put(ctx, text, s); err != nil {
			log.Warn().Err(err).Msg("sentiment cache put failed")
		}
		observability.ObserveClassification("classified", s)
		return s, nil
	})
	return v.(domain.Sentiment), err
}

func (r *SentimentResolver) cached(ctx context.Context, text string) (domain.Sentiment, bool) {
	s, ok, err := r.cache.Get(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("sentiment cache get failed")
		return domain.Unclassified, false
	}
	return s, ok && s.Resolved()
}

func (r *SentimentResolver) logFailure(err error, text string) {
	ev := log.Error()
	if errors.Is(err, domain.ErrMalformedResponse) {
		ev = log.Warn()
	}
	ev.Err(err).
		Str("kind", observability.LabelErr(err)).
		Int("text_len", len(text)).
		Msg("sentiment classification failed, defaulting to Mixed")
}

// TieredCache reads the fast tier first and back-fills it from the durable tier.
type TieredCache struct {
	fast    domain.SentimentCache
	durable domain.SentimentCache
}

func NewTieredCache(fast, durable domain.SentimentCache) *TieredCache {
	return &TieredCache{fast: fast, durable: durable}
}

func (t *TieredCache) Get(ctx context.Context, text string) (domain.Sentiment, bool, error) {
	if s, ok, err := t.fast.Get(ctx, text); err == nil && ok {
		return s, true, nil
	}
	s, ok, err := t.durable.Get(ctx, text)
	if err != nil || !ok {
		return domain.Unclassified, false, err
	}
	_ = t.fast.Put(ctx, text, s)
	return s, true, nil
}

func (t *TieredCache) Put(ctx context.Context, text string, s domain.Sentiment) error {
	_ = t.fast.Put(ctx, text, s)
	return t.durable.Put(ctx, text, s)
}

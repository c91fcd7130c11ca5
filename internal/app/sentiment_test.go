package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_sentiment/internal/adapters/memory"
	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
)

func TestResolve_CachesSuccessfulClassification(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{labels: map[string]domain.Sentiment{"fine": domain.Positive}}
	r := app.NewSentimentResolver(cls, memory.New())

	assert.Equal(t, domain.Positive, r.Resolve(ctx, "fine"))
	assert.Equal(t, domain.Positive, r.Resolve(ctx, "fine"))
	assert.Equal(t, 1, cls.Calls(), "second lookup must be a cache hit")
}

func TestResolve_MalformedFallsBackWithoutCaching(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{errs: map[string]error{
		"odd": fmt.Errorf("decode: %w", domain.ErrMalformedResponse),
	}}
	cache := memory.New()
	r := app.NewSentimentResolver(cls, cache)

	s, err := r.TryResolve(ctx, "odd")
	assert.Equal(t, domain.Mixed, s)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	assert.Equal(t, domain.Mixed, r.Resolve(ctx, "odd"))
	assert.Equal(t, 2, cls.Calls(), "a malformed answer must not be cached")
	assert.Zero(t, cache.Len())
}

func TestResolve_UpstreamFailureFallsBackToMixed(t *testing.T) {
	cls := &fakeClassifier{errs: map[string]error{"x": domain.ErrRetriesExhausted}}
	r := app.NewSentimentResolver(cls, memory.New())

	s, err := r.TryResolve(context.Background(), "x")
	assert.Equal(t, domain.Mixed, s)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
}

func TestResolve_NeutralLabelIsCachedAsMixed(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{} // unknown text maps to Mixed, a real answer
	cache := memory.New()
	r := app.NewSentimentResolver(cls, cache)

	assert.Equal(t, domain.Mixed, r.Resolve(ctx, "so-so"))
	s, ok, _ := cache.Get(ctx, "so-so")
	assert.True(t, ok)
	assert.Equal(t, domain.Mixed, s)
}

func TestResolve_ConcurrentSameTextCallsOnce(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{
		labels: map[string]domain.Sentiment{"same": domain.Negative},
		delay:  map[string]time.Duration{"same": 20 * time.Millisecond},
	}
	r := app.NewSentimentResolver(cls, memory.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, domain.Negative, r.Resolve(ctx, "same"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cls.Calls())
}

func TestTieredCache_BackfillsFastTier(t *testing.T) {
	ctx := context.Background()
	fast, durable := memory.New(), memory.New()
	require.NoError(t, durable.Put(ctx, "kept", domain.Positive))

	tc := app.NewTieredCache(fast, durable)
	s, ok, err := tc.Get(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Positive, s)

	s, ok, _ = fast.Get(ctx, "kept")
	assert.True(t, ok)
	assert.Equal(t, domain.Positive, s)

	require.NoError(t, tc.Put(ctx, "new", domain.Negative))
	_, ok, _ = durable.Get(ctx, "new")
	assert.True(t, ok)
}

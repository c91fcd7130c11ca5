package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_sentiment/internal/adapters/memory"
	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
)

func newQueryService(src domain.ReviewSource, cls domain.Classifier) *app.QueryService {
	return app.NewQueryService(src, app.NewSentimentResolver(cls, memory.New()), 0)
}

func TestSearch_AcmeSummary(t *testing.T) {
	cls := acmeClassifier()
	q := newQueryService(&fakeSource{reviews: acmeReviews()}, cls)

	res, err := q.Search(context.Background(), domain.SearchQuery{Company: "acme", Mode: domain.ModeSummary})
	require.NoError(t, err)
	require.NotNil(t, res.Summary)

	sum := res.Summary.SentimentSummary
	assert.Equal(t, 4, res.Summary.TotalReviews)
	assert.Equal(t, 2, sum[domain.Positive].Count)
	assert.Equal(t, 2, sum[domain.Negative].Count)
	assert.Equal(t, 0, sum[domain.Mixed].Count)
	assert.Equal(t, "4.00", sum[domain.Positive].AverageRating)
	assert.Equal(t, "2.00", sum[domain.Negative].AverageRating)
	assert.Equal(t, "0.00", sum[domain.Mixed].AverageRating)
	assert.Equal(t, 2, cls.Calls(), "only unclassified reviews reach the classifier")
}

func TestSearch_NotFound(t *testing.T) {
	q := newQueryService(&fakeSource{reviews: acmeReviews()}, acmeClassifier())

	_, err := q.Search(context.Background(), domain.SearchQuery{Company: "Globex"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearch_SourceError(t *testing.T) {
	boom := errors.New("db down")
	q := newQueryService(&fakeSource{err: boom}, acmeClassifier())

	_, err := q.Search(context.Background(), domain.SearchQuery{Company: "acme"})
	assert.ErrorIs(t, err, boom)
}

func TestSearch_DefaultModeIsSummary(t *testing.T) {
	q := newQueryService(&fakeSource{reviews: acmeReviews()}, acmeClassifier())

	res, err := q.Search(context.Background(), domain.SearchQuery{Company: "acme"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSummary, res.Mode)
	assert.Same(t, res.Summary, res.Body())
}

func TestSearch_ListModePaginates(t *testing.T) {
	q := newQueryService(&fakeSource{reviews: acmeReviews()}, acmeClassifier())
	ctx := context.Background()

	res, err := q.Search(ctx, domain.SearchQuery{Company: "acme", Mode: domain.ModeList, Page: 2, Limit: 3})
	require.NoError(t, err)
	require.NotNil(t, res.List)
	require.Len(t, res.List.Reviews, 1)
	assert.Equal(t, "4", res.List.Reviews[0].ID)
	assert.Equal(t, domain.Negative, res.List.Reviews[0].Sentiment)
	assert.Equal(t, domain.Pagination{Page: 2, Limit: 3, Total: 4}, res.List.Pagination)
	assert.Equal(t, "50.00", res.List.Analysis.PositivePercentage)

	res, err = q.Search(ctx, domain.SearchQuery{Company: "acme", Mode: domain.ModeList, Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, res.List.Reviews)
	assert.NotNil(t, res.List.Reviews, "past the end is an empty list, not null")

	res, err = q.Search(ctx, domain.SearchQuery{Company: "acme", Mode: domain.ModeList})
	require.NoError(t, err)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 10, Total: 4}, res.List.Pagination)
	assert.Len(t, res.List.Reviews, 4)
}

func TestSearch_CombinedMode(t *testing.T) {
	q := newQueryService(&fakeSource{reviews: acmeReviews()}, acmeClassifier())

	res, err := q.Search(context.Background(), domain.SearchQuery{Company: "acme", Mode: domain.ModeCombined})
	require.NoError(t, err)
	require.NotNil(t, res.Combined)

	c := res.Combined.SentimentSummary
	assert.Equal(t, 4, c.TotalReviews)
	assert.Equal(t, "3.00", c.AverageRating)
	assert.Equal(t, domain.Mixed, c.OverallSentiment, "2 of 4 positive is not a majority")
	assert.Len(t, c.Reviews, 4)
}

func TestSearch_CustomPolicy(t *testing.T) {
	neg := func(map[domain.Sentiment]int, int) domain.Sentiment { return domain.Negative }
	q := newQueryService(&fakeSource{reviews: acmeReviews()}, acmeClassifier()).WithPolicy(neg)

	res, err := q.Search(context.Background(), domain.SearchQuery{Company: "acme", Mode: domain.ModeCombined})
	require.NoError(t, err)
	assert.Equal(t, domain.Negative, res.Combined.SentimentSummary.OverallSentiment)
}

func TestResolveAll_PreservesOrderAndSource(t *testing.T) {
	src := acmeReviews()
	cls := acmeClassifier()
	cls.delay = map[string]time.Duration{"Acme grew on me": 30 * time.Millisecond}
	q := newQueryService(&fakeSource{}, cls)

	out, err := q.ResolveAll(context.Background(), src)
	require.NoError(t, err)

	ids := []string{out[0].ID, out[1].ID, out[2].ID, out[3].ID}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Equal(t, domain.Positive, out[2].Sentiment)
	assert.Equal(t, domain.Unclassified, src[2].Sentiment, "input must not be mutated")
}

func TestResolveAll_Cancelled(t *testing.T) {
	q := newQueryService(&fakeSource{}, acmeClassifier())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.ResolveAll(ctx, acmeReviews())
	assert.ErrorIs(t, err, context.Canceled)
}

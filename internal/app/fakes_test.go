package app_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"review_sentiment/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	reviews []domain.Review
	err     error
}

func (f *fakeSource) ListReviews(ctx context.Context, company string) ([]domain.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Review
	for _, rv := range f.reviews {
		if rv.MatchesCompany(company) {
			out = append(out, rv)
		}
	}
	return out, nil
}

type fakeClassifier struct {
	labels map[string]domain.Sentiment
	errs   map[string]error
	delay  map[string]time.Duration
	calls  int32
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (domain.Sentiment, error) {
	atomic.AddInt32(&f.calls, 1)
	if d := f.delay[text]; d > 0 {
		time.Sleep(d)
	}
	if err := f.errs[text]; err != nil {
		return domain.Unclassified, err
	}
	if s, ok := f.labels[text]; ok {
		return s, nil
	}
	return domain.Mixed, nil
}

func (f *fakeClassifier) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

type fakeRepo struct {
	fakeSource
	mu       sync.Mutex
	upserted []domain.Review
	misses   map[string]string
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, rs...)
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, id string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.misses == nil {
		f.misses = map[string]string{}
	}
	f.misses[id] = reason
	return nil
}

// acmeReviews is the Acme set: ratings [5,1,3,3], two stored labels and
// two awaiting classification.
func acmeReviews() []domain.Review {
	return []domain.Review{
		{ID: "1", Text: "Acme is superb", Rating: 5, Sentiment: domain.Positive, CompanyName: "Acme"},
		{ID: "2", Text: "Acme is awful", Rating: 1, Sentiment: domain.Negative, CompanyName: "Acme"},
		{ID: "3", Text: "Acme grew on me", Rating: 3, Sentiment: domain.Unclassified, CompanyName: "Acme"},
		{ID: "4", Text: "Acme lost my order", Rating: 3, Sentiment: domain.Unclassified, CompanyName: "Acme"},
	}
}

func acmeClassifier() *fakeClassifier {
	return &fakeClassifier{labels: map[string]domain.Sentiment{
		"Acme grew on me":    domain.Positive,
		"Acme lost my order": domain.Negative,
	}}
}

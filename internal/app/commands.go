package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
)

// TryResolver is satisfied by *SentimentResolver.
type TryResolver interface {
	TryResolve(ctx context.Context, text string) (domain.Sentiment, error)
}

type IngestionService struct {
	resolver TryResolver
	repo     domain.ReviewRepository
	workers  int64
}

func NewIngestionService(r TryResolver, repo domain.ReviewRepository, workers int) *IngestionService {
	if workers <= 0 {
		workers = 1
	}
	return &IngestionService{resolver: r, repo: repo, workers: int64(workers)}
}

type IngestReport struct {
	Total      int
	Classified int
	Fallbacks  int
}

// Ingest resolves every unclassified review with a bounded worker pool, then
// upserts the set. Reviews whose classification failed are stored unclassified and
// recorded as misses.
func (s *IngestionService) Ingest(ctx context.Context, reviews []domain.Review) (IngestReport, error) {
	rep := IngestReport{Total: len(reviews)}
	out := make([]domain.Review, len(reviews))
	sem := semaphore.NewWeighted(s.workers)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i, rv := range reviews {
		if rv.Sentiment.Resolved() {
			out[i] = rv
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, fmt.Errorf("semaphore acquire: %w", err)
		}

		wg.Add(1)
		go func(i int, rv domain.Review) {
			defer wg.Done()
			defer sem.Release(1)

			label, err := s.resolver.TryResolve(ctx, rv.Text)
			out[i] = rv.WithSentiment(label)
			if err != nil {
				// stored unclassified so the next read classifies it again
				out[i] = rv
				if lerr := s.repo.LogMiss(ctx, rv.ID, observability.LabelErr(err)); lerr != nil {
					log.Warn().Err(lerr).Str("id", rv.ID).Msg("log miss failed")
				}
			}

			mu.Lock()
			if err != nil {
				rep.Fallbacks++
			} else {
				rep.Classified++
			}
			mu.Unlock()
			log.Debug().Str("id", rv.ID).Str("sentiment", string(label)).Msg("review classified")
		}(i, rv)
	}
	wg.Wait()

	if err := s.repo.UpsertReviews(ctx, out); err != nil {
		// do not swallow this; surface so we know inserts failed
		return rep, fmt.Errorf("upsert reviews: %w", err)
	}
	return rep, nil
}

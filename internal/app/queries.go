package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"review_sentiment/internal/domain"
)

// Resolver is satisfied by *SentimentResolver.
type Resolver interface {
	Resolve(ctx context.Context, text string) domain.Sentiment
}

type QueryService struct {
	source      domain.ReviewSource
	resolver    Resolver
	policy      OverallPolicy
	concurrency int
}

// NewQueryService wires the search use case. concurrency caps in-flight
// classifications per request; 0 means no cap.
func NewQueryService(src domain.ReviewSource, r Resolver, concurrency int) *QueryService {
	return &QueryService{source: src, resolver: r, policy: PositiveMajority, concurrency: concurrency}
}

// WithPolicy swaps the overall-sentiment rule used by the combined report.
func (s *QueryService) WithPolicy(p OverallPolicy) *QueryService {
	s.policy = p
	return s
}

func (s *QueryService) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	reviews, err := s.source.ListReviews(ctx, q.Company)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("list reviews: %w", err)
	}
	if len(reviews) == 0 {
		return domain.SearchResult{}, domain.ErrNotFound
	}

	resolved, err := s.ResolveAll(ctx, reviews)
	if err != nil {
		return domain.SearchResult{}, err
	}

	res := domain.SearchResult{Mode: q.Mode}
	switch q.Mode {
	case domain.ModeList:
		page, limit := normalizePage(q.Page, q.Limit)
		res.List = &domain.ReviewPage{
			Reviews:    paginate(resolved, page, limit),
			Analysis:   Analyze(resolved),
			Pagination: domain.Pagination{Page: page, Limit: limit, Total: len(resolved)},
		}
	case domain.ModeCombined:
		res.Combined = &domain.CombinedReport{SentimentSummary: Combine(resolved, s.policy)}
	default:
		res.Mode = domain.ModeSummary
		res.Summary = &domain.CategoryReport{SentimentSummary: Summarize(resolved), TotalReviews: len(resolved)}
	}
	return res, nil
}

// ResolveAll returns copies of reviews with every unclassified sentiment
// resolved. Classifications run concurrently; output order matches input order.
func (s *QueryService) ResolveAll(ctx context.Context, reviews []domain.Review) ([]domain.Review, error) {
	out := make([]domain.Review, len(reviews))
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, rv := range reviews {
		if rv.Sentiment.Resolved() {
			out[i] = rv
			continue
		}
		i, rv := i, rv
		g.Go(func() error {
			out[i] = rv.WithSentiment(s.resolver.Resolve(gctx, rv.Text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// a cancelled request still gets Mixed fallbacks from the resolver; report the cancellation instead
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = domain.DefaultPage
	}
	if limit < 1 {
		limit = domain.DefaultLimit
	}
	return page, limit
}

func paginate(rs []domain.Review, page, limit int) []domain.Review {
	start := (page - 1) * limit
	if start >= len(rs) {
		return []domain.Review{}
	}
	end := start + limit
	if end > len(rs) {
		end = len(rs)
	}
	return rs[start:end]
}

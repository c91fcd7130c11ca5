// Package fixture serves reviews from the static JSON fixture.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"review_sentiment/internal/domain"
)

type file struct {
	Reviews []map[string]any `json:"reviews"`
}

// Source holds the decoded fixture in memory. It is read-only after construction.
type Source struct {
	reviews []domain.Review
}

func Load(path string, legacyMixed bool) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Decode(f, legacyMixed)
}

func Decode(r io.Reader, legacyMixed bool) (*Source, error) {
	var raw file
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	out := make([]domain.Review, 0, len(raw.Reviews))
	empty := 0
	for _, rec := range raw.Reviews {
		rv := mapReview(rec, legacyMixed)
		if rv.Text == "" {
			empty++
		}
		out = append(out, rv)
	}
	if empty > 0 {
		log.Warn().Int("empty", empty).Msg("fixture reviews without text")
	}
	return &Source{reviews: out}, nil
}

// All returns a copy of every review in fixture order.
func (s *Source) All() []domain.Review {
	return append([]domain.Review(nil), s.reviews...)
}

func (s *Source) ListReviews(_ context.Context, company string) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range s.reviews {
		if rv.MatchesCompany(company) {
			out = append(out, rv)
		}
	}
	return out, nil
}

package domain

import "context"

// ReviewSource returns the reviews whose company matches the query (see Review.MatchesCompany).
type ReviewSource interface {
	ListReviews(ctx context.Context, company string) ([]Review, error)
}

type ReviewRepository interface {
	ReviewSource
	UpsertReviews(ctx context.Context, rs []Review) error
	LogMiss(ctx context.Context, reviewID string, reason string) error
}

// Classifier calls the external text-classification endpoint.
type Classifier interface {
	Classify(ctx context.Context, text string) (Sentiment, error)
}

// SentimentCache maps raw review text to a resolved label.
type SentimentCache interface {
	Get(ctx context.Context, text string) (Sentiment, bool, error)
	Put(ctx context.Context, text string, s Sentiment) error
}

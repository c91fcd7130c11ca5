package app

import (
	"fmt"

	"review_sentiment/internal/domain"
)

// OverallPolicy derives a single label for a whole review set.
type OverallPolicy func(counts map[domain.Sentiment]int, total int) domain.Sentiment

// PositiveMajority labels the set Positive when more than half of the reviews are
// Positive and Mixed otherwise. It never answers Negative.
func PositiveMajority(counts map[domain.Sentiment]int, total int) domain.Sentiment {
	if total > 0 && float64(counts[domain.Positive])/float64(total) > 0.5 {
		return domain.Positive
	}
	return domain.Mixed
}

// category folds an unresolved label into Mixed for reporting.
func category(s domain.Sentiment) domain.Sentiment {
	if !s.Resolved() {
		return domain.Mixed
	}
	return s
}

func ratio(part float64, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return part / float64(whole)
}

func fixed2(f float64) string { return fmt.Sprintf("%.2f", f) }

// Summarize partitions reviews by label and reports count, average rating,
// share of the total and texts (in input order) for each category.
func Summarize(reviews []domain.Review) domain.SentimentSummary {
	type acc struct {
		count  int
		rating float64
		texts  []string
	}
	groups := make(map[domain.Sentiment]*acc, len(domain.Categories))
	for _, c := range domain.Categories {
		groups[c] = &acc{texts: []string{}}
	}
	for _, rv := range reviews {
		g := groups[category(rv.Sentiment)]
		g.count++
		g.rating += rv.Rating
		g.texts = append(g.texts, rv.Text)
	}

	out := make(domain.SentimentSummary, len(groups))
	for c, g := range groups {
		out[c] = domain.CategorySummary{
			Count:         g.count,
			AverageRating: fixed2(ratio(g.rating, g.count)),
			Percentage:    fixed2(100 * ratio(float64(g.count), len(reviews))),
			Reviews:       g.texts,
		}
	}
	return out
}

func counts(reviews []domain.Review) map[domain.Sentiment]int {
	m := make(map[domain.Sentiment]int, len(domain.Categories))
	for _, rv := range reviews {
		m[category(rv.Sentiment)]++
	}
	return m
}

// Analyze reports the share of each category, as used by the list view.
func Analyze(reviews []domain.Review) domain.SentimentAnalysis {
	c, n := counts(reviews), len(reviews)
	return domain.SentimentAnalysis{
		PositivePercentage: fixed2(100 * ratio(float64(c[domain.Positive]), n)),
		NegativePercentage: fixed2(100 * ratio(float64(c[domain.Negative]), n)),
		MixedPercentage:    fixed2(100 * ratio(float64(c[domain.Mixed]), n)),
	}
}

// Combine collapses the set into one record: total, mean rating, overall label
// and every text in input order.
func Combine(reviews []domain.Review, policy OverallPolicy) domain.CombinedSummary {
	var sum float64
	texts := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		sum += rv.Rating
		texts = append(texts, rv.Text)
	}
	return domain.CombinedSummary{
		TotalReviews:     len(reviews),
		AverageRating:    fixed2(ratio(sum, len(reviews))),
		OverallSentiment: policy(counts(reviews), len(reviews)),
		Reviews:          texts,
	}
}

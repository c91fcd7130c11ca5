package app_test

import (
	"strconv"
	"testing"

	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
)

func resolved(labels ...domain.Sentiment) []domain.Review {
	out := make([]domain.Review, len(labels))
	for i, l := range labels {
		out[i] = domain.Review{ID: strconv.Itoa(i), Text: "t" + strconv.Itoa(i), Rating: float64(i%5 + 1), Sentiment: l}
	}
	return out
}

func TestSummarize_CountsSumToTotal(t *testing.T) {
	rs := resolved(domain.Positive, domain.Negative, domain.Mixed, domain.Positive, domain.Mixed)
	sum := app.Summarize(rs)

	total := 0
	for _, c := range domain.Categories {
		total += sum[c].Count
	}
	if total != len(rs) {
		t.Fatalf("counts sum %d, want %d", total, len(rs))
	}
}

func TestSummarize_EmptyCategoryAverageIsZero(t *testing.T) {
	sum := app.Summarize(resolved(domain.Positive, domain.Positive))

	for _, c := range []domain.Sentiment{domain.Negative, domain.Mixed} {
		got := sum[c]
		if got.Count != 0 || got.AverageRating != "0.00" || got.Percentage != "0.00" {
			t.Fatalf("%s: unexpected %+v", c, got)
		}
		if got.Reviews == nil {
			t.Fatalf("%s: reviews should be an empty list, not nil", c)
		}
	}
}

func TestSummarize_PercentagesSumToHundred(t *testing.T) {
	sum := app.Summarize(resolved(domain.Positive, domain.Negative, domain.Mixed))

	var total float64
	for _, c := range domain.Categories {
		f, err := strconv.ParseFloat(sum[c].Percentage, 64)
		if err != nil {
			t.Fatalf("parse %q: %v", sum[c].Percentage, err)
		}
		total += f
	}
	if total < 99.98 || total > 100.02 {
		t.Fatalf("percentages sum to %.2f", total)
	}
}

func TestSummarize_KeepsEncounterOrder(t *testing.T) {
	rs := []domain.Review{
		{Text: "b", Sentiment: domain.Positive},
		{Text: "x", Sentiment: domain.Negative},
		{Text: "a", Sentiment: domain.Positive},
	}
	got := app.Summarize(rs)[domain.Positive].Reviews
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestSummarize_UnclassifiedCountsAsMixed(t *testing.T) {
	sum := app.Summarize([]domain.Review{{Text: "?", Rating: 2}})
	if sum[domain.Mixed].Count != 1 || sum[domain.Mixed].AverageRating != "2.00" {
		t.Fatalf("unexpected mixed: %+v", sum[domain.Mixed])
	}
}

func TestAnalyze(t *testing.T) {
	a := app.Analyze(resolved(domain.Positive, domain.Positive, domain.Negative, domain.Mixed))
	if a.PositivePercentage != "50.00" || a.NegativePercentage != "25.00" || a.MixedPercentage != "25.00" {
		t.Fatalf("unexpected analysis: %+v", a)
	}
}

func TestCombine(t *testing.T) {
	rs := []domain.Review{
		{Text: "a", Rating: 5, Sentiment: domain.Positive},
		{Text: "b", Rating: 4, Sentiment: domain.Positive},
		{Text: "c", Rating: 1, Sentiment: domain.Negative},
	}
	c := app.Combine(rs, app.PositiveMajority)
	if c.TotalReviews != 3 || c.AverageRating != "3.33" || c.OverallSentiment != domain.Positive {
		t.Fatalf("unexpected combined: %+v", c)
	}
	if len(c.Reviews) != 3 || c.Reviews[2] != "c" {
		t.Fatalf("unexpected texts: %v", c.Reviews)
	}
}

func TestPositiveMajority_NeverNegative(t *testing.T) {
	cases := []struct {
		counts map[domain.Sentiment]int
		total  int
		want   domain.Sentiment
	}{
		{map[domain.Sentiment]int{domain.Positive: 3, domain.Negative: 1}, 4, domain.Positive},
		{map[domain.Sentiment]int{domain.Positive: 2, domain.Negative: 2}, 4, domain.Mixed},
		{map[domain.Sentiment]int{domain.Negative: 4}, 4, domain.Mixed},
		{map[domain.Sentiment]int{}, 0, domain.Mixed},
	}
	for _, tc := range cases {
		if got := app.PositiveMajority(tc.counts, tc.total); got != tc.want {
			t.Fatalf("PositiveMajority(%v, %d) = %s, want %s", tc.counts, tc.total, got, tc.want)
		}
	}
}

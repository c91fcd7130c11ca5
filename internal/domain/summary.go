package domain

type CategorySummary struct {
	Count         int      `json:"count"`
	AverageRating string   `json:"averageRating"`
	Percentage    string   `json:"percentage"`
	Reviews       []string `json:"reviews"`
}

// SentimentSummary is keyed by the resolved label ("Positive", "Negative", "Mixed").
type SentimentSummary map[Sentiment]CategorySummary

type SentimentAnalysis struct {
	PositivePercentage string `json:"positivePercentage"`
	NegativePercentage string `json:"negativePercentage"`
	MixedPercentage    string `json:"mixedPercentage"`
}

type CombinedSummary struct {
	TotalReviews     int       `json:"totalReviews"`
	AverageRating    string    `json:"averageRating"`
	OverallSentiment Sentiment `json:"overallSentiment"`
	Reviews          []string  `json:"reviews"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

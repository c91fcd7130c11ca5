package domain

import "strings"

type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Mixed    Sentiment = "Mixed"

	// Unclassified marks a review whose sentiment has not been resolved yet.
	Unclassified Sentiment = ""
)

// Categories lists the resolved labels in report order.
var Categories = []Sentiment{Positive, Negative, Mixed}

// ParseSentiment maps a stored label onto a Sentiment. Unknown values are Unclassified.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return Positive
	case "negative":
		return Negative
	case "mixed":
		return Mixed
	default:
		return Unclassified
	}
}

func (s Sentiment) Resolved() bool { return s != Unclassified }

type Review struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	Rating      float64   `json:"rating"`
	Sentiment   Sentiment `json:"sentiment"`
	CompanyName string    `json:"companyName"`
}

// WithSentiment returns a copy of r carrying s.
func (r Review) WithSentiment(s Sentiment) Review {
	r.Sentiment = s
	return r
}

// MatchesCompany reports whether the review's company contains q, ignoring case.
// An empty q matches every review.
func (r Review) MatchesCompany(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.CompanyName), strings.ToLower(q))
}

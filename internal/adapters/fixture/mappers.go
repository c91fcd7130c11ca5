package fixture

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"review_sentiment/internal/domain"
)

/********** alias registry (single source of truth) **********/

var reviewAliases = map[string][]string{
	"id":        {"id", "review_id", "reviewId"},
	"title":     {"title", "review_title", "headline", "summary"},
	"text":      {"text", "review_text", "review", "comment", "content", "body"},
	"company":   {"companyName", "company_name", "company", "company.name"},
	"sentiment": {"sentiment", "sentiment_label", "label"},
	"rating":    {"rating", "rate", "score", "stars", "rating.value"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstAlias returns the first non-empty value for a named alias set.
// Numeric ids are rendered without a decimal point.
func firstAlias(m map[string]any, key string) string {
	for _, p := range reviewAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64 or string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return v
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

/********** review mapper **********/

// mapReview turns one raw fixture record into a Review. With legacyMixed set a
// stored "Mixed" is read as the unclassified placeholder.
func mapReview(r map[string]any, legacyMixed bool) domain.Review {
	rv := domain.Review{
		ID:          firstAlias(r, "id"),
		Title:       firstAlias(r, "title"),
		Text:        firstAlias(r, "text"),
		CompanyName: firstAlias(r, "company"),
		Rating:      getFloatFlexible(r, reviewAliases["rating"]...),
		Sentiment:   domain.ParseSentiment(firstAlias(r, "sentiment")),
	}
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if legacyMixed && rv.Sentiment == domain.Mixed {
		rv.Sentiment = domain.Unclassified
	}
	return rv
}

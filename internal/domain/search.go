package domain

import "fmt"

// Mode selects which report a search produces.
type Mode string

const (
	ModeList     Mode = "list"
	ModeSummary  Mode = "summary"
	ModeCombined Mode = "combined"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeSummary, nil
	case ModeList, ModeSummary, ModeCombined:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 200
)

type SearchQuery struct {
	Company string
	Page    int
	Limit   int
	Mode    Mode
}

// ReviewPage is the list-mode report.
type ReviewPage struct {
	Reviews    []Review          `json:"reviews"`
	Analysis   SentimentAnalysis `json:"analysis"`
	Pagination Pagination        `json:"pagination"`
}

// CategoryReport is the per-category summary report.
type CategoryReport struct {
	SentimentSummary SentimentSummary `json:"sentimentSummary"`
	TotalReviews     int              `json:"totalReviews"`
}

// CombinedReport is the single-record summary report.
type CombinedReport struct {
	SentimentSummary CombinedSummary `json:"sentimentSummary"`
}

// SearchResult holds exactly one report, matching Mode.
type SearchResult struct {
	Mode     Mode
	List     *ReviewPage
	Summary  *CategoryReport
	Combined *CombinedReport
}

// Body returns the report to serialize for the selected mode.
func (r SearchResult) Body() any {
	switch r.Mode {
	case ModeList:
		return r.List
	case ModeCombined:
		return r.Combined
	default:
		return r.Summary
	}
}

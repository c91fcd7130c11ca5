// Package huggingface is the client for the hosted text-classification endpoint.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
)

// Policy bounds the retry loop. A call stops after MaxAttempts requests or once
// the cumulative wait reaches MaxWait; a single wait is capped at what is left.
type Policy struct {
	MaxAttempts    int
	MaxWait        time.Duration
	RateLimitDelay time.Duration // wait after HTTP 429
	LoadingDelay   time.Duration // wait when the model is loading and no estimate is given
}

var DefaultPolicy = Policy{
	MaxAttempts:    5,
	MaxWait:        30 * time.Second,
	RateLimitDelay: 2 * time.Second,
	LoadingDelay:   10 * time.Second,
}

type Options struct {
	BaseURL string
	Model   string
	Key     string
	RPS     int
	Timeout time.Duration
	Policy  Policy
	Clock   clockwork.Clock
}

type Client struct {
	endpoint string
	key      string
	hc       *http.Client
	rl       *rate.Limiter
	cb       *gobreaker.CircuitBreaker
	clock    clockwork.Clock
	policy   Policy
}

func New(o Options) (*Client, error) {
	if o.BaseURL == "" || o.Model == "" {
		return nil, fmt.Errorf("base URL and model are required")
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	p := o.Policy
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.MaxWait <= 0 {
		p.MaxWait = DefaultPolicy.MaxWait
	}
	if p.RateLimitDelay <= 0 {
		p.RateLimitDelay = DefaultPolicy.RateLimitDelay
	}
	if p.LoadingDelay <= 0 {
		p.LoadingDelay = DefaultPolicy.LoadingDelay
	}

	return &Client{
		endpoint: strings.TrimRight(o.BaseURL, "/") + "/models/" + o.Model,
		key:      o.Key,
		hc:       &http.Client{Timeout: o.Timeout},
		rl:       rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		cb:       newBreaker(),
		clock:    o.Clock,
		policy:   p,
	}, nil
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "huggingface",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Only hard upstream failures count against the breaker.
		IsSuccessful: func(err error) bool {
			var tr *transientError
			return err == nil ||
				errors.Is(err, domain.ErrMalformedResponse) ||
				errors.As(err, &tr) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// ---- wire types ----

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type errorBody struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// transientError is a failure worth waiting out: model loading or rate limiting.
type transientError struct {
	reason string
	wait   time.Duration
	status int
}

func (e *transientError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.reason, e.status)
}

// ---- Public API ----

// Classify returns the label for text. Model-loading and rate-limit responses are
// retried within the Policy bounds; everything else fails on the first attempt.
func (c *Client) Classify(ctx context.Context, text string) (domain.Sentiment, error) {
	var waited time.Duration
	for attempt := 1; ; attempt++ {
		s, err := c.attempt(ctx, text)
		if err == nil {
			return s, nil
		}

		var tr *transientError
		if !errors.As(err, &tr) {
			return domain.Unclassified, err
		}
		if attempt >= c.policy.MaxAttempts || waited >= c.policy.MaxWait {
			return domain.Unclassified, fmt.Errorf("%w after %d attempts (waited %s): %v",
				domain.ErrRetriesExhausted, attempt, waited, err)
		}

		wait := min(tr.wait, c.policy.MaxWait-waited)

		log.Warn().
			Str("reason", tr.reason).
			Int("attempt", attempt).
			Dur("wait", wait).
			Int("text_len", len(text)).
			Msg("classifier busy, retrying")
		observability.ObserveRetry(tr.reason)

		if !c.sleep(ctx, wait) {
			return domain.Unclassified, ctx.Err()
		}
		waited += wait
	}
}

// MapLabel maps a raw model label onto the three canonical categories.
func MapLabel(label string) domain.Sentiment {
	switch strings.ToLower(label) {
	case "positive":
		return domain.Positive
	case "negative":
		return domain.Negative
	default:
		return domain.Mixed
	}
}

// ---- Internals ----

func (c *Client) attempt(ctx context.Context, text string) (domain.Sentiment, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.Unclassified, err
	}
	v, err := c.cb.Execute(func() (interface{}, error) {
		return c.post(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Unclassified, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if err != nil {
		return domain.Unclassified, err
	}
	return v.(domain.Sentiment), nil
}

func (c *Client) post(ctx context.Context, text string) (domain.Sentiment, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return domain.Unclassified, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Unclassified, err
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-sentiment/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Unclassified, ctx.Err()
		}
		return domain.Unclassified, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("huggingface", "classify", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Unclassified, fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode == http.StatusOK {
		return parseLabels(body)
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	if strings.Contains(strings.ToLower(eb.Error), "is currently loading") {
		wait := c.policy.LoadingDelay
		if eb.EstimatedTime > 0 {
			wait = time.Duration(eb.EstimatedTime * float64(time.Second))
		}
		return domain.Unclassified, &transientError{reason: "loading", wait: wait, status: resp.StatusCode}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.Unclassified, &transientError{reason: "rate_limited", wait: c.policy.RateLimitDelay, status: resp.StatusCode}
	}
	return domain.Unclassified, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, snippet(body))
}

// parseLabels accepts [{label,score},...] and the nested [[{label,score},...]] form.
func parseLabels(body []byte) (domain.Sentiment, error) {
	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 && flat[0].Label != "" {
		return MapLabel(flat[0].Label), nil
	}
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 && nested[0][0].Label != "" {
		return MapLabel(nested[0][0].Label), nil
	}
	return domain.Unclassified, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, snippet(body))
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}

// sleep waits for d or returns false early if ctx is done.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := c.clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.Chan():
		return true
	}
}

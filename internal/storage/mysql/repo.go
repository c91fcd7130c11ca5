package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"strings"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
)

func valSentiment(s domain.Sentiment) any {
	if !s.Resolved() {
		return nil
	}
	return string(s)
}

func textHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// escapeLike keeps user input from acting as LIKE wildcards.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSpace(s))
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*6) // 6 params per row
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args,
			rv.ID,
			rv.CompanyName,
			rv.Title,
			rv.Text,
			rv.Rating,
			valSentiment(rv.Sentiment),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, reviewID string, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, reviewID, reason)
	return err
}

func (r *Repo) ListReviews(ctx context.Context, company string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, escapeLike(company))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var (
			rv        domain.Review
			title     sql.NullString
			rating    sql.NullFloat64
			sentiment sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.CompanyName, &title, &rv.Text, &rating, &sentiment); err != nil {
			return nil, err
		}
		if title.Valid {
			rv.Title = title.String
		}
		if rating.Valid {
			rv.Rating = rating.Float64
		}
		if sentiment.Valid {
			rv.Sentiment = domain.ParseSentiment(sentiment.String)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get and Put make the repo usable as a durable sentiment cache.

func (r *Repo) Get(ctx context.Context, text string) (domain.Sentiment, bool, error) {
	var label string
	err := r.db.QueryRowContext(ctx, getSentimentSQL, textHash(text)).Scan(&label)
	if err == sql.ErrNoRows {
		observability.ObserveCache("mysql", "miss")
		return domain.Unclassified, false, nil
	}
	if err != nil {
		observability.ObserveCache("mysql", "error")
		return domain.Unclassified, false, err
	}
	s := domain.ParseSentiment(label)
	if !s.Resolved() {
		observability.ObserveCache("mysql", "miss")
		return domain.Unclassified, false, nil
	}
	observability.ObserveCache("mysql", "hit")
	return s, true, nil
}

func (r *Repo) Put(ctx context.Context, text string, s domain.Sentiment) error {
	observability.ObserveCache("mysql", "set")
	_, err := r.db.ExecContext(ctx, upsertSentimentSQL, textHash(text), text, string(s))
	return err
}

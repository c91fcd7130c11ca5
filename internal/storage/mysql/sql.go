package mysql

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n  (id, company_name, title, `text`, rating, sentiment)\nVALUES "

// Use VALUES(col) for broad compatibility; a NULL sentiment keeps the stored one.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  company_name = VALUES(company_name),\n" +
	"  title        = VALUES(title),\n" +
	"  `text`       = VALUES(`text`),\n" +
	"  rating       = VALUES(rating),\n" +
	"  sentiment    = COALESCE(VALUES(sentiment), reviews.sentiment),\n" +
	"  updated_at   = CURRENT_TIMESTAMP\n"

const insertMissSQL = `
INSERT INTO ingest_misses (review_id, reason)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

const upsertSentimentSQL = `
INSERT INTO sentiment_cache (text_hash, ` + "`text`" + `, sentiment)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  sentiment  = VALUES(sentiment),
  updated_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Case-insensitive substring match on company; an empty pattern matches all rows.
// Ordered by insertion so results follow fixture order.
const listReviewsSQL = `
SELECT id, company_name, title, ` + "`text`" + `, rating, sentiment
FROM reviews
WHERE LOWER(company_name) LIKE CONCAT('%', LOWER(?), '%')
ORDER BY seq
`

const getSentimentSQL = `
SELECT sentiment FROM sentiment_cache WHERE text_hash = ?
`

// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"review_sentiment/internal/domain"
)

// Searcher is satisfied by *app.QueryService.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error)
}

type Handlers struct{ Q Searcher }

const notFoundMessage = "No reviews found for the specified company."

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/api/fetchReviews", h.search(""))
	s.mux.Get("/api/reviews", h.search(domain.ModeList))
	s.mux.Get("/api/reviews/summary", h.search(domain.ModeSummary))
	s.mux.Get("/api/reviews/overview", h.search(domain.ModeCombined))
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	if err := json.NewEncoder(w).Encode(errorBody{Error: notFoundMessage}); err != nil {
		log.Error().Err(err).Msg("write not-found response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body, nil
}

// writeReport serializes v with a weak ETag, answering 304 when the client already has it.
func writeReport(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal report")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode report")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write search body")
	}
}

// positiveInt parses an optional query value; absent means def.
func positiveInt(r *http.Request, key string, def, max int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || (max > 0 && n > max) {
		return 0, false
	}
	return n, true
}

// search serves one report mode. An empty fixed mode reads ?mode= instead.
func (h *Handlers) search(fixed domain.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := fixed
		if mode == "" {
			m, err := domain.ParseMode(r.URL.Query().Get("mode"))
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid mode", "mode must be one of list, summary, combined")
				return
			}
			mode = m
		}

		page, ok := positiveInt(r, "page", domain.DefaultPage, 0)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid page", "page must be a positive integer")
			return
		}
		limit, ok := positiveInt(r, "limit", domain.DefaultLimit, domain.MaxLimit)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}

		q := domain.SearchQuery{
			Company: r.URL.Query().Get("companyName"),
			Page:    page,
			Limit:   limit,
			Mode:    mode,
		}
		res, err := h.Q.Search(r.Context(), q)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeNotFound(w)
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// client went away or the timeout middleware already answered
			log.Warn().Err(err).Str("company", q.Company).Msg("search abandoned")
			return
		case err != nil:
			log.Error().Err(err).Str("company", q.Company).Msg("search failed")
			writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "search failed")
			return
		}

		writeReport(w, r, res.Body())
	}
}

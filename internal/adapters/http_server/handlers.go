package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stay_search/internal/app"
	"stay_search/internal/domain"
	"stay_search/internal/search"
)

type Handlers struct{ S *app.SearchService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type reloadResponse struct {
	Version  int64                    `json:"version"`
	Listings int                      `json:"listings"`
	Counts   map[domain.Partition]int `json:"counts"`
	Aliases  int                      `json:"aliases"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Get("/search/explain", h.explain)
		r.Get("/locations/resolve", h.resolveLocation)
		r.Get("/listings/{id}", h.getListing)
		r.Post("/admin/reload", h.reload)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem documents.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownPartition):
		writeProblem(w, http.StatusBadRequest, "Invalid type", "type must be one of domestic, overseas")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
	case errors.Is(err, domain.ErrCatalogNotLoaded):
		writeProblem(w, http.StatusServiceUnavailable, "Catalog Unavailable", "the listing catalog has not been loaded yet")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeJSON answers 200 with an ETag, or 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if etag != "" {
		w.Header().Set("ETag", etag)
		if inm := r.Header.Get("If-None-Match"); inm == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("route", routePattern(r)).Msg("failed to write body")
	}
}

// partitionParam reads ?type=, defaulting to domestic.
func partitionParam(r *http.Request) (domain.Partition, error) {
	t := strings.TrimSpace(r.URL.Query().Get("type"))
	if t == "" {
		return domain.Domestic, nil
	}
	return domain.ParsePartition(strings.ToLower(t))
}

// parseFilters reads the optional refinement parameters of /v1/search.
func parseFilters(r *http.Request) (search.Filters, string) {
	q := r.URL.Query()
	f := search.Filters{Category: strings.TrimSpace(q.Get("category"))}

	for _, p := range []struct {
		name string
		dst  *int64
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return search.Filters{}, p.name + " must be a non-negative integer"
		}
		*p.dst = n
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return search.Filters{}, "minPrice must not exceed maxPrice"
	}

	for _, a := range strings.Split(q.Get("amenities"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			f.Amenities = append(f.Amenities, a)
		}
	}

	sort, ok := search.ParseSortOrder(strings.TrimSpace(q.Get("sort")))
	if !ok {
		return search.Filters{}, "sort must be one of recommended, price_asc, price_desc"
	}
	f.Sort = sort
	return f, ""
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	p, err := partitionParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	f, msg := parseFilters(r)
	if msg != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", msg)
		return
	}
	res, err := h.S.Search(r.Context(), app.SearchQuery{
		Keyword:   r.URL.Query().Get("q"),
		Slug:      strings.TrimSpace(r.URL.Query().Get("slug")),
		Partition: p,
		Filters:   f,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, res)
}

func (h *Handlers) explain(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Missing id", "id is required")
		return
	}
	var p domain.Partition
	if t := r.URL.Query().Get("type"); t != "" {
		var err error
		if p, err = domain.ParsePartition(strings.ToLower(t)); err != nil {
			writeError(w, err)
			return
		}
	}
	d, err := h.S.Explain(r.Context(), app.ExplainQuery{
		Keyword:   r.URL.Query().Get("q"),
		Slug:      strings.TrimSpace(r.URL.Query().Get("slug")),
		Partition: p,
		ListingID: id,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, d)
}

func (h *Handlers) resolveLocation(w http.ResponseWriter, r *http.Request) {
	p, err := partitionParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := h.S.ResolveLocation(r.Context(), r.URL.Query().Get("q"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, d)
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.S.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, l)
}

func (h *Handlers) reload(w http.ResponseWriter, r *http.Request) {
	c, err := h.S.Reload(r.Context())
	if err != nil {
		log.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("catalog reload failed")
		writeProblem(w, http.StatusInternalServerError, "Reload Failed", "the previous catalog keeps serving")
		return
	}
	counts := make(map[domain.Partition]int, len(domain.Partitions))
	for _, p := range domain.Partitions {
		counts[p] = c.Count(p)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reloadResponse{
		Version:  c.Version,
		Listings: c.Len(),
		Counts:   counts,
		Aliases:  c.Resolver().Len(),
	})
}

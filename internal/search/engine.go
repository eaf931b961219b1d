package search

import (
	"cmp"
	"slices"

	"stay_search/internal/domain"
)

// TieBreak orders listings that share a score.
type TieBreak int

const (
	// TieBreakNone keeps the input order among equal scores.
	TieBreakNone TieBreak = iota
	// TieBreakID orders equal scores by ascending listing ID.
	TieBreakID
)

// ParseTieBreak accepts "none" (or empty) and "id".
func ParseTieBreak(s string) (TieBreak, bool) {
	switch s {
	case "", "none":
		return TieBreakNone, true
	case "id":
		return TieBreakID, true
	}
	return TieBreakNone, false
}

// Engine filters a partition, scores each listing and orders the hits.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	scorer   *Scorer
	tieBreak TieBreak
}

// Option configures an Engine.
type Option func(*Engine)

// WithTieBreak sets the secondary order for equal scores.
func WithTieBreak(tb TieBreak) Option {
	return func(e *Engine) { e.tieBreak = tb }
}

func NewEngine(r *Resolver, opts ...Option) *Engine {
	e := &Engine{scorer: NewScorer(r)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Scorer() *Scorer { return e.scorer }

// Hit is a ranked listing with the score that placed it.
type Hit struct {
	Listing *domain.Listing
	Score   MatchScore
}

// Rank is Search with scores attached. A blank keyword browses the whole
// partition in input order and every hit carries NoMatch.
func (e *Engine) Rank(listings []*domain.Listing, keyword, slug string, p domain.Partition) []Hit {
	q := e.scorer.compile(keyword, slug)
	hits := make([]Hit, 0, len(listings))
	for _, l := range listings {
		if l == nil || l.Type != p {
			continue
		}
		if q.empty() {
			hits = append(hits, Hit{Listing: l})
			continue
		}
		if s := q.score(l); s > NoMatch {
			hits = append(hits, Hit{Listing: l, Score: s})
		}
	}
	if q.empty() {
		return hits
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if e.tieBreak == TieBreakID {
			return cmp.Compare(a.Listing.ID, b.Listing.ID)
		}
		return 0
	})
	return hits
}

// Search returns the listings of partition p that match keyword, best first.
// The returned slice shares listing pointers with the input.
func (e *Engine) Search(listings []*domain.Listing, keyword, slug string, p domain.Partition) []*domain.Listing {
	hits := e.Rank(listings, keyword, slug, p)
	out := make([]*domain.Listing, len(hits))
	for i, h := range hits {
		out[i] = h.Listing
	}
	return out
}

// Score exposes the same calculation Search uses for a single listing.
func (e *Engine) Score(l *domain.Listing, keyword, slug string) MatchScore {
	return e.scorer.Score(l, keyword, slug)
}

// MatchDetails reports how a listing scored, for tests and debugging.
type MatchDetails struct {
	ListingID   string     `json:"listingId"`
	ListingName string     `json:"listingName"`
	Keyword     string     `json:"keyword"`
	Slug        string     `json:"slug"`
	Aliases     []string   `json:"aliases"`
	Score       MatchScore `json:"score"`
	Rule        string     `json:"rule"`
	Matched     bool       `json:"matched"`
}

func (e *Engine) MatchDetails(l *domain.Listing, keyword, slug string) MatchDetails {
	q := e.scorer.compile(keyword, slug)
	s := q.score(l)
	d := MatchDetails{
		Keyword: keyword,
		Slug:    slug,
		Aliases: q.aliases,
		Score:   s,
		Rule:    s.String(),
		Matched: s > NoMatch,
	}
	if l != nil {
		d.ListingID = l.ID
		d.ListingName = l.Name
	}
	if d.Aliases == nil {
		d.Aliases = []string{}
	}
	return d
}

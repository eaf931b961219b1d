package search

import (
	"cmp"
	"slices"

	"stay_search/internal/domain"
)

type SortOrder string

const (
	SortRecommended SortOrder = "recommended"
	SortPriceAsc    SortOrder = "price_asc"
	SortPriceDesc   SortOrder = "price_desc"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "", SortRecommended:
		return SortRecommended, true
	case SortPriceAsc, SortPriceDesc:
		return SortOrder(s), true
	}
	return SortRecommended, false
}

// CategoryOptions maps a filter value onto the listing categories it accepts.
var CategoryOptions = map[string][]string{
	"hotel":      {"호텔", "호텔·리조트", "리조트", "hotel", "resort"},
	"motel":      {"모텔", "motel"},
	"pension":    {"펜션", "풀빌라", "pension"},
	"guesthouse": {"게스트하우스", "한옥", "hostel", "guesthouse"},
	"camping":    {"캠핑", "글램핑", "camping", "glamping"},
}

// Filters narrow an already ranked result. Zero values disable each filter;
// MaxPrice 0 means no upper bound.
type Filters struct {
	Category  string
	MinPrice  int64
	MaxPrice  int64
	Amenities []string
	Sort      SortOrder
}

func (f Filters) IsZero() bool {
	return f.Category == "" && f.MinPrice == 0 && f.MaxPrice == 0 && len(f.Amenities) == 0 &&
		(f.Sort == "" || f.Sort == SortRecommended)
}

// Refine applies f to ranked, keeping relevance order unless a price sort is
// requested. The input slice is not modified.
func Refine(ranked []*domain.Listing, f Filters) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(ranked))
	for _, l := range ranked {
		if l != nil && f.accepts(l) {
			out = append(out, l)
		}
	}
	switch f.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b *domain.Listing) int { return comparePrice(a, b, false) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b *domain.Listing) int { return comparePrice(a, b, true) })
	}
	return out
}

func (f Filters) accepts(l *domain.Listing) bool {
	if f.Category != "" {
		accepted, ok := CategoryOptions[f.Category]
		if !ok || !slices.Contains(accepted, l.Category) {
			return false
		}
	}
	if lo, hi, ok := l.StayPriceRange(); ok {
		if f.MaxPrice > 0 && lo > f.MaxPrice {
			return false
		}
		if hi < f.MinPrice {
			return false
		}
	}
	for _, a := range f.Amenities {
		if !l.HasAmenity(a) {
			return false
		}
	}
	return true
}

// comparePrice orders by cheapest stay rate; unpriced listings sort last in
// both directions.
func comparePrice(a, b *domain.Listing, desc bool) int {
	pa, _, okA := a.StayPriceRange()
	pb, _, okB := b.StayPriceRange()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	if desc {
		return cmp.Compare(pb, pa)
	}
	return cmp.Compare(pa, pb)
}

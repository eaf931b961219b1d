package app

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"stay_search/internal/domain"
	"stay_search/internal/search"
)

/********** alias registries (single source of truth) **********/

var listingAliases = map[string][]string{
	"id":        {"id", "listing_id", "listingId", "hotel_id"},
	"type":      {"type", "listing_type", "listingType", "market"},
	"name":      {"name", "title", "hotel_name", "translations.name"},
	"location":  {"location", "address", "address.line", "full_address", "location.address", "formatted_address"},
	"city_slug": {"citySlug", "city_slug", "city.slug"},
	"city":      {"city", "address.city", "city.name", "locality"},
	"category":  {"category", "property_type", "propertyType", "category.name"},
	"desc":      {"desc", "description", "summary", "markdown_description"},
}

var roomAliases = map[string][]string{
	"name":    {"name", "room_name", "title"},
	"day_use": {"dayUse", "day_use", "day_use_price", "prices.dayUse"},
	"stay":    {"stay", "stay_price", "price", "prices.stay"},
}

var errMissingID = errors.New("listing payload has no id")

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

// lookupStr returns the value at path as a string; numbers are formatted.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

// firstNonEmpty returns the first non-empty string for a named alias set.
func firstNonEmpty(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// int64Flexible reads a price from several paths (float64/int/string like "80,000").
func int64Flexible(m map[string]any, paths ...string) int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

// sliceStrings accepts []any with either strings or {url/src/name} objects.
func sliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, field := range []string{"url", "src", "name"} {
					if u, ok := t[field].(string); ok && u != "" {
						out = append(out, u)
						break
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** listing mapper **********/

// mapListing turns a feed payload into a Listing. The city slug falls back to
// resolving the city name through the alias table, then to its compact form.
func mapListing(p map[string]any, partition domain.Partition, res *search.Resolver) (domain.Listing, error) {
	l := domain.Listing{
		ID:          firstNonEmpty(p, listingAliases, "id"),
		Type:        partition,
		Name:        firstNonEmpty(p, listingAliases, "name"),
		Location:    firstNonEmpty(p, listingAliases, "location"),
		CitySlug:    search.Normalize(firstNonEmpty(p, listingAliases, "city_slug")),
		Category:    firstNonEmpty(p, listingAliases, "category"),
		Description: firstNonEmpty(p, listingAliases, "desc"),
		Images:      sliceStrings(p, "images", "photos"),
		Amenities:   sliceStrings(p, "amenities", "facilities"),
		Rooms:       mapRooms(p),
	}
	if l.ID == "" {
		return domain.Listing{}, errMissingID
	}
	if t, err := domain.ParsePartition(firstNonEmpty(p, listingAliases, "type")); err == nil {
		l.Type = t
	}
	if l.CitySlug == "" {
		city := firstNonEmpty(p, listingAliases, "city")
		if slug, ok := res.ResolveToSlug(city); ok {
			l.CitySlug = slug
		} else if guess := search.NormalizeForSearch(city); isASCII(guess) {
			// romanized names double as slugs; Hangul ones wait for an alias row
			l.CitySlug = guess
		}
	}
	// slugs are opaque hyphen-free tokens
	l.CitySlug = strings.ReplaceAll(l.CitySlug, "-", "")
	if l.Name == "" {
		log.Warn().Str("id", l.ID).Str("context", "mapListing").Msg("listing has no name")
	}
	return l, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func mapRooms(p map[string]any) []domain.Room {
	raw, ok := lookupAny(p, "rooms").([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Room, 0, len(raw))
	for _, it := range raw {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.Room{
			Name:   firstNonEmpty(m, roomAliases, "name"),
			DayUse: int64Flexible(m, roomAliases["day_use"]...),
			Stay:   int64Flexible(m, roomAliases["stay"]...),
		})
	}
	return out
}

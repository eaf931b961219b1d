package search

import (
	"strings"
	"unicode/utf8"

	"stay_search/internal/domain"
)

// MatchScore is the relevance of one listing for one keyword. Each rule owns a
// distinct value, strictly above every lower-priority rule.
type MatchScore int

const (
	NoMatch             MatchScore = 0
	CategoryMatch       MatchScore = 2
	NamePartial         MatchScore = 3
	LocationMatch       MatchScore = 4
	CitySlugMatch       MatchScore = 5
	NamePartsAll        MatchScore = 6
	SpaceIgnoreContains MatchScore = 7
	SpaceIgnoreExact    MatchScore = 8
	AliasExact          MatchScore = 9
	ExactName           MatchScore = 10
)

var scoreNames = map[MatchScore]string{
	ExactName:           "exact name",
	AliasExact:          "alias exact",
	SpaceIgnoreExact:    "space-insensitive exact",
	SpaceIgnoreContains: "space-insensitive contains",
	NamePartsAll:        "all keyword tokens",
	CitySlugMatch:       "city slug",
	LocationMatch:       "location contains",
	NamePartial:         "partial name",
	CategoryMatch:       "category",
	NoMatch:             "no match",
}

func (s MatchScore) String() string {
	if n, ok := scoreNames[s]; ok {
		return n
	}
	return scoreNames[NoMatch]
}

// minContainsRunes guards the contains rule against one- and two-rune keywords.
const minContainsRunes = 3

// rule is one relevance explanation. Rules are kept in descending score order
// and evaluation stops at the first hit, which is therefore the maximum.
type rule struct {
	score MatchScore
	match func(q *compiledQuery, f *fields) bool
}

var rules = []rule{
	{ExactName, func(q *compiledQuery, f *fields) bool {
		return f.name == q.norm
	}},
	{AliasExact, func(q *compiledQuery, f *fields) bool {
		if q.slugMatches(f.listing) {
			return true
		}
		for _, a := range q.compactAliases {
			if strings.Contains(f.locationCompact, a) || strings.Contains(f.nameCompact, a) {
				return true
			}
		}
		return false
	}},
	{SpaceIgnoreExact, func(q *compiledQuery, f *fields) bool {
		return q.compact != "" && f.nameCompact == q.compact
	}},
	{SpaceIgnoreContains, func(q *compiledQuery, f *fields) bool {
		return utf8.RuneCountInString(q.compact) >= minContainsRunes && strings.Contains(f.nameCompact, q.compact)
	}},
	{NamePartsAll, func(q *compiledQuery, f *fields) bool {
		return f.name != "" && containsAll(f.name, q.tokens)
	}},
	{CitySlugMatch, func(q *compiledQuery, f *fields) bool {
		return q.slugMatches(f.listing)
	}},
	{LocationMatch, func(q *compiledQuery, f *fields) bool {
		return f.location != "" && (containsAny(f.location, q.tokens) || containsAny(f.location, q.aliases))
	}},
	{NamePartial, func(q *compiledQuery, f *fields) bool {
		return f.name != "" && containsAny(f.name, q.tokens)
	}},
	{CategoryMatch, func(q *compiledQuery, f *fields) bool {
		return f.category != "" && strings.Contains(f.category, q.norm)
	}},
}

// compiledQuery is the per-call, listing-independent half of scoring.
type compiledQuery struct {
	keyword        string
	slug           string
	norm           string
	compact        string
	tokens         []string
	aliases        []string
	compactAliases []string
}

func (q *compiledQuery) empty() bool { return q.norm == "" }

func (q *compiledQuery) slugMatches(l *domain.Listing) bool {
	return q.slug != "" && l.CitySlug == q.slug
}

// fields holds the normalized views of one listing; missing fields stay empty
// and never match.
type fields struct {
	listing         *domain.Listing
	name            string
	nameCompact     string
	location        string
	locationCompact string
	category        string
}

func newFields(l *domain.Listing) *fields {
	return &fields{
		listing:         l,
		name:            Normalize(l.Name),
		nameCompact:     NormalizeForSearch(l.Name),
		location:        Normalize(l.Location),
		locationCompact: NormalizeForSearch(l.Location),
		category:        Normalize(l.Category),
	}
}

// Scorer evaluates the rule battery against an alias resolver.
type Scorer struct {
	resolver *Resolver
}

func NewScorer(r *Resolver) *Scorer {
	if r == nil {
		r = NewResolver(nil)
	}
	return &Scorer{resolver: r}
}

func (s *Scorer) Resolver() *Resolver { return s.resolver }

// Score returns the highest-priority rule that fires for l, or NoMatch.
// A nil listing or blank keyword is NoMatch.
func (s *Scorer) Score(l *domain.Listing, keyword, slug string) MatchScore {
	return s.compile(keyword, slug).score(l)
}

func (s *Scorer) compile(keyword, slug string) *compiledQuery {
	q := &compiledQuery{
		keyword: keyword,
		slug:    Normalize(slug),
		norm:    Normalize(keyword),
		compact: NormalizeForSearch(keyword),
	}
	if q.empty() {
		return q
	}
	// half-typed syllables ("오션뷰ㅎ") must not sink the token rules
	q.tokens = strings.Fields(Normalize(StripJamo(keyword)))
	q.aliases = s.resolver.KeywordAliases(keyword)
	q.compactAliases = make([]string, 0, len(q.aliases))
	for _, a := range q.aliases {
		if c := NormalizeForSearch(a); c != "" {
			q.compactAliases = append(q.compactAliases, c)
		}
	}
	return q
}

func (q *compiledQuery) score(l *domain.Listing) MatchScore {
	if l == nil || q.empty() {
		return NoMatch
	}
	f := newFields(l)
	for _, r := range rules {
		if r.match(q, f) {
			return r.score
		}
	}
	return NoMatch
}

func containsAll(s string, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func containsAny(s string, parts []string) bool {
	for _, p := range parts {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

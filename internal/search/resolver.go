package search

import (
	"sort"
	"strings"
)

// Resolver answers alias questions over one immutable Table. Exact lookups are
// hash hits; partial expansion scans the sorted key list, which is fine for a
// curated table of a few hundred rows.
// TODO: index keys by bigram once tables grow past a few thousand rows.
type Resolver struct {
	forward Table
	reverse map[string][]string // slug -> aliases, sorted
	keys    []string            // sorted, for deterministic expansion order
}

// NewResolver indexes t. The table must not be mutated afterwards.
func NewResolver(t Table) *Resolver {
	r := &Resolver{
		forward: t,
		reverse: make(map[string][]string),
		keys:    sortedKeys(t),
	}
	for _, alias := range r.keys {
		slug := t[alias]
		r.reverse[slug] = append(r.reverse[slug], alias)
	}
	return r
}

// Len is the number of aliases indexed.
func (r *Resolver) Len() int { return len(r.keys) }

// ResolveToSlug returns the canonical slug for keyword. It never invents a
// slug; callers wanting a fallback use Tables.LocationSlug.
func (r *Resolver) ResolveToSlug(keyword string) (string, bool) {
	k := Normalize(keyword)
	if k == "" {
		return "", false
	}
	slug, ok := r.forward[k]
	return slug, ok
}

// HasAlias reports whether keyword is a key of the table.
func (r *Resolver) HasAlias(keyword string) bool {
	_, ok := r.ResolveToSlug(keyword)
	return ok
}

// AliasesFor returns every alias pointing at slug.
func (r *Resolver) AliasesFor(slug string) []string {
	return r.reverse[Normalize(slug)]
}

// KeywordAliases expands keyword into the strings treated as synonyms for
// containment checks:
//   - the keyword and its slug when the keyword is an alias,
//   - the keyword and every alias of it when the keyword is itself a slug,
//   - any alias containing the keyword or contained in it.
func (r *Resolver) KeywordAliases(keyword string) []string {
	k := Normalize(keyword)
	if k == "" {
		return nil
	}
	set := newOrderedSet()
	if slug, ok := r.forward[k]; ok {
		set.add(k)
		set.add(slug)
	}
	if aliases, ok := r.reverse[k]; ok {
		set.add(k)
		for _, a := range aliases {
			set.add(a)
		}
	}
	for _, alias := range r.keys {
		if strings.Contains(alias, k) || strings.Contains(k, alias) {
			set.add(alias)
		}
	}
	return set.items
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet { return &orderedSet{seen: make(map[string]struct{})} }

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func sortedKeys(t Table) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

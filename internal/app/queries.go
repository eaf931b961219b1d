package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"stay_search/internal/adapters/observability"
	"stay_search/internal/domain"
	"stay_search/internal/search"
)

type SearchQuery struct {
	Keyword   string
	Slug      string // optional; resolved from Keyword when empty
	Partition domain.Partition
	Filters   search.Filters
}

type SearchResult struct {
	Keyword   string            `json:"keyword"`
	Slug      string            `json:"slug"`
	Partition domain.Partition  `json:"type"`
	Version   int64             `json:"version"`
	Total     int               `json:"total"`
	Items     []*domain.Listing `json:"items"`
}

type ExplainQuery struct {
	Keyword   string
	Slug      string
	Partition domain.Partition
	ListingID string
}

// SearchService answers searches from the current catalog snapshot. Reload
// builds a new snapshot and publishes it with a single atomic store, so
// in-flight searches keep the snapshot they started with.
type SearchService struct {
	repo       domain.ListingRepository
	aliases    AliasLoader
	cache      domain.Cache
	cacheTTL   time.Duration
	engineOpts []search.Option

	current  atomic.Pointer[Catalog]
	version  atomic.Int64
	reloadMu sync.Mutex
}

func NewSearchService(r domain.ListingRepository, a AliasLoader, c domain.Cache, ttl time.Duration, opts ...search.Option) *SearchService {
	if a == nil {
		a = StaticAliases(search.DefaultTables())
	}
	return &SearchService{repo: r, aliases: a, cache: c, cacheTTL: ttl, engineOpts: opts}
}

// Reload rebuilds the catalog from the repository and alias source. On error
// the previous snapshot stays in place.
func (s *SearchService) Reload(ctx context.Context) (*Catalog, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	tables, err := s.aliases.Load(ctx)
	if err != nil {
		observability.ObserveReload("error")
		return nil, fmt.Errorf("load aliases: %w", err)
	}

	var all []domain.Listing
	for _, p := range domain.Partitions {
		ls, err := s.repo.ListListings(ctx, p)
		if err != nil {
			observability.ObserveReload("error")
			return nil, fmt.Errorf("list %s listings: %w", p, err)
		}
		all = append(all, ls...)
	}

	c := NewCatalog(s.version.Add(1), all, tables, s.engineOpts...)
	s.current.Store(c)

	for _, p := range domain.Partitions {
		observability.SetCatalogSize(string(p), c.Count(p))
	}
	observability.ObserveReload("ok")
	log.Info().
		Int64("version", c.Version).
		Int("listings", c.Len()).
		Int("aliases", c.Resolver().Len()).
		Dur("took", time.Since(start)).
		Msg("catalog loaded")
	return c, nil
}

// Watch reloads on every tick until ctx is done. Failed reloads are logged and
// the previous snapshot keeps serving.
func (s *SearchService) Watch(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Reload(ctx); err != nil {
				log.Warn().Err(err).Msg("catalog reload failed")
			}
		}
	}
}

func (s *SearchService) Catalog() (*Catalog, error) {
	c := s.current.Load()
	if c == nil {
		return nil, domain.ErrCatalogNotLoaded
	}
	return c, nil
}

func (s *SearchService) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	start := time.Now()
	if _, err := domain.ParsePartition(string(q.Partition)); err != nil {
		return SearchResult{}, err
	}
	c, err := s.Catalog()
	if err != nil {
		return SearchResult{}, err
	}

	slug := q.Slug
	if slug == "" {
		slug = c.Tables().LocationSlug(q.Keyword, q.Partition)
	}
	out := SearchResult{Keyword: q.Keyword, Slug: slug, Partition: q.Partition, Version: c.Version}

	key := searchCacheKey(c.Token, q.Partition, q.Keyword, slug, q.Filters)
	var cached []string
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			out.Items = c.lookup(cached)
			out.Total = len(out.Items)
			observability.ObserveSearch(string(q.Partition), outcome(out.Total), time.Since(start))
			return out, nil
		}
	}

	hits := c.Engine().Rank(c.Listings(), q.Keyword, slug, q.Partition)
	ranked := make([]*domain.Listing, len(hits))
	for i, h := range hits {
		ranked[i] = h.Listing
		if h.Score > search.NoMatch {
			observability.ObserveMatchRule(h.Score.String())
		}
	}
	if !q.Filters.IsZero() {
		ranked = search.Refine(ranked, q.Filters)
	}
	out.Items = ranked
	out.Total = len(ranked)

	if s.cache != nil {
		ids := make([]string, len(ranked))
		for i, l := range ranked {
			ids[i] = l.ID
		}
		if err := s.cache.Set(ctx, key, ids, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("search cache set failed")
		}
	}

	observability.ObserveSearch(string(q.Partition), outcome(out.Total), time.Since(start))
	return out, nil
}

func (s *SearchService) Explain(_ context.Context, q ExplainQuery) (search.MatchDetails, error) {
	c, err := s.Catalog()
	if err != nil {
		return search.MatchDetails{}, err
	}
	l, ok := c.Listing(q.ListingID)
	if !ok {
		return search.MatchDetails{}, domain.ErrNotFound
	}
	slug := q.Slug
	if slug == "" {
		p := q.Partition
		if p == "" {
			p = l.Type
		}
		slug = c.Tables().LocationSlug(q.Keyword, p)
	}
	return c.Engine().MatchDetails(l, q.Keyword, slug), nil
}

func (s *SearchService) ResolveLocation(_ context.Context, keyword string, p domain.Partition) (search.SlugDetails, error) {
	if _, err := domain.ParsePartition(string(p)); err != nil {
		return search.SlugDetails{}, err
	}
	c, err := s.Catalog()
	if err != nil {
		return search.SlugDetails{}, err
	}
	return c.Tables().SlugDetails(keyword, p), nil
}

// GetListing serves from the snapshot first, then falls back to the cached
// repository read for listings ingested since the last reload.
func (s *SearchService) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	if c, err := s.Catalog(); err == nil {
		if l, ok := c.Listing(id); ok {
			return *l, nil
		}
	}

	key := listingCacheKey(id)
	var l domain.Listing
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &l); ok {
			return l, nil
		}
	}
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	}
	return l, nil
}

func (c *Catalog) lookup(ids []string) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := c.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func outcome(total int) string {
	if total == 0 {
		return "empty"
	}
	return "hit"
}

func listingCacheKey(id string) string { return "listing:" + id }

// searchCacheKey is scoped to the catalog token. The cache is shared by every
// replica, so a key must never be reused by a snapshot with different contents.
func searchCacheKey(token string, p domain.Partition, keyword, slug string, f search.Filters) string {
	sig := strings.Join([]string{
		search.Normalize(keyword),
		slug,
		f.Category,
		strconv.FormatInt(f.MinPrice, 10),
		strconv.FormatInt(f.MaxPrice, 10),
		strings.Join(f.Amenities, ","),
		string(f.Sort),
	}, "|")
	sum := sha1.Sum([]byte(sig))
	return fmt.Sprintf("search:%s:%s:%s", token, p, hex.EncodeToString(sum[:]))
}

package app

import (
	"time"

	"github.com/google/uuid"

	"stay_search/internal/domain"
	"stay_search/internal/search"
)

// Catalog is one immutable snapshot of listings plus the alias vocabulary they
// are searched with. It is built completely before being published and never
// modified afterwards, so any number of searches may read it concurrently.
type Catalog struct {
	Version  int64
	LoadedAt time.Time
	// Token is unique across processes; Version restarts at 1 on every boot.
	Token string

	listings []*domain.Listing
	byID     map[string]*domain.Listing
	counts   map[domain.Partition]int
	tables   search.Tables
	resolver *search.Resolver
	engine   *search.Engine
}

func NewCatalog(version int64, listings []domain.Listing, tables search.Tables, opts ...search.Option) *Catalog {
	c := &Catalog{
		Version:  version,
		LoadedAt: time.Now().UTC(),
		Token:    newCatalogToken(),
		listings: make([]*domain.Listing, 0, len(listings)),
		byID:     make(map[string]*domain.Listing, len(listings)),
		counts:   make(map[domain.Partition]int, len(domain.Partitions)),
		tables:   tables,
		resolver: search.NewResolver(tables.Merged()),
	}
	for i := range listings {
		l := &listings[i]
		if l.ID == "" {
			continue
		}
		if _, dup := c.byID[l.ID]; dup {
			continue
		}
		c.listings = append(c.listings, l)
		c.byID[l.ID] = l
		c.counts[l.Type]++
	}
	c.engine = search.NewEngine(c.resolver, opts...)
	return c
}

func (c *Catalog) Len() int { return len(c.listings) }

func (c *Catalog) Count(p domain.Partition) int { return c.counts[p] }

func (c *Catalog) Listing(id string) (*domain.Listing, bool) {
	l, ok := c.byID[id]
	return l, ok
}

func (c *Catalog) Listings() []*domain.Listing { return c.listings }

func (c *Catalog) Tables() search.Tables { return c.tables }

func (c *Catalog) Resolver() *search.Resolver { return c.resolver }

func (c *Catalog) Engine() *search.Engine { return c.engine }

func newCatalogToken() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

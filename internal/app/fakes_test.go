package app_test

import (
	"context"
	"encoding/json"
	"sync"

	"stay_search/internal/domain"
)

// ---- fakes ----

type miss struct {
	ID     string
	Status int
	Reason string
}

type fakeRepo struct {
	mu       sync.Mutex
	listings []domain.Listing
	aliases  map[domain.Partition]map[string]string
	misses   []miss
	listErr  error
	gets     int
}

func (f *fakeRepo) UpsertListing(_ context.Context, l domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.listings {
		if f.listings[i].ID == l.ID {
			f.listings[i] = l
			return nil
		}
	}
	f.listings = append(f.listings, l)
	return nil
}

func (f *fakeRepo) LogMiss(_ context.Context, id string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses = append(f.misses, miss{id, status, reason})
	return nil
}

func (f *fakeRepo) GetListing(_ context.Context, id string) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrNotFound
}

func (f *fakeRepo) ListListings(_ context.Context, p domain.Partition) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Listing
	for _, l := range f.listings {
		if l.Type == p {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAliases(_ context.Context, p domain.Partition) (map[string]string, error) {
	return f.aliases[p], nil
}

func (f *fakeRepo) UpsertAliases(_ context.Context, p domain.Partition, rows map[string]string) error {
	if f.aliases == nil {
		f.aliases = map[domain.Partition]map[string]string{}
	}
	f.aliases[p] = rows
	return nil
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	hits  int
	dels  []string
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeFeed struct {
	ids      map[domain.Partition][]string
	payloads map[string]map[string]any
	errs     map[string]error
	listErr  error
}

func (f *fakeFeed) ListIDs(_ context.Context, p domain.Partition) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ids[p], nil
}

func (f *fakeFeed) GetListing(_ context.Context, id string) (map[string]any, error) {
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	p, ok := f.payloads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func seedListings() []domain.Listing {
	return []domain.Listing{
		{
			ID: "d1", Type: domain.Domestic, Name: "강남 스테이", Location: "서울 강남구 역삼동",
			CitySlug: "seoul", Category: "호텔", Amenities: []string{"wifi", "parking"},
			Rooms: []domain.Room{{Name: "디럭스", Stay: 90000, DayUse: 40000}},
		},
		{
			ID: "d2", Type: domain.Domestic, Name: "해운대 오션뷰", Location: "부산 해운대구 우동",
			CitySlug: "busan", Category: "리조트", Amenities: []string{"wifi"},
			Rooms: []domain.Room{{Name: "오션", Stay: 150000}},
		},
		{
			ID: "o1", Type: domain.Overseas, Name: "Shinjuku Tower Hotel", Location: "Tokyo Shinjuku",
			CitySlug: "tokyo", Category: "hotel",
		},
	}
}

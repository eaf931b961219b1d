package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stay_search/internal/app"
	"stay_search/internal/domain"
	"stay_search/internal/search"
)

func ids(ls []*domain.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func loadedService(t *testing.T, repo *fakeRepo, cache *fakeCache) *app.SearchService {
	t.Helper()
	var c domain.Cache
	if cache != nil {
		c = cache
	}
	s := app.NewSearchService(repo, nil, c, 10*time.Minute)
	_, err := s.Reload(context.Background())
	require.NoError(t, err)
	return s
}

func TestSearch_NotLoaded(t *testing.T) {
	s := app.NewSearchService(&fakeRepo{}, nil, nil, time.Minute)
	_, err := s.Search(context.Background(), app.SearchQuery{Keyword: "강남", Partition: domain.Domestic})
	assert.ErrorIs(t, err, domain.ErrCatalogNotLoaded)
}

func TestSearch_UnknownPartition(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)
	_, err := s.Search(context.Background(), app.SearchQuery{Keyword: "강남", Partition: "moon"})
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

func TestSearch_AliasKeywordResolvesSlug(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)

	res, err := s.Search(context.Background(), app.SearchQuery{Keyword: "강남", Partition: domain.Domestic})
	require.NoError(t, err)
	assert.Equal(t, "seoul", res.Slug)
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, []string{"d1"}, ids(res.Items))
	assert.Equal(t, 1, res.Total)
}

func TestSearch_ExplicitSlugOverridesResolution(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)

	res, err := s.Search(context.Background(), app.SearchQuery{Keyword: "스테이", Slug: "busan", Partition: domain.Domestic})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d1"}, ids(res.Items))
}

func TestSearch_EmptyKeywordBrowsesPartition(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)

	res, err := s.Search(context.Background(), app.SearchQuery{Keyword: "   ", Partition: domain.Domestic})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, ids(res.Items))

	res, err = s.Search(context.Background(), app.SearchQuery{Partition: domain.Overseas})
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, ids(res.Items))
}

func TestSearch_Filters(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)
	ctx := context.Background()

	res, err := s.Search(ctx, app.SearchQuery{Partition: domain.Domestic, Filters: search.Filters{MaxPrice: 100000}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids(res.Items))

	res, err = s.Search(ctx, app.SearchQuery{Partition: domain.Domestic, Filters: search.Filters{Sort: search.SortPriceDesc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d1"}, ids(res.Items))

	res, err = s.Search(ctx, app.SearchQuery{Partition: domain.Domestic, Filters: search.Filters{Amenities: []string{"parking"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids(res.Items))
}

func TestSearch_NoMatchIsEmpty(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)

	res, err := s.Search(context.Background(), app.SearchQuery{Keyword: "xyz-nonexistent", Partition: domain.Domestic})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestSearch_CacheScopedToCatalogVersion(t *testing.T) {
	repo := &fakeRepo{listings: seedListings()}
	cache := &fakeCache{}
	s := loadedService(t, repo, cache)
	ctx := context.Background()
	q := app.SearchQuery{Keyword: "강남", Partition: domain.Domestic}

	first, err := s.Search(ctx, q)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	second, err := s.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, ids(first.Items), ids(second.Items))

	_, err = s.Reload(ctx)
	require.NoError(t, err)
	third, err := s.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits, "a reload must not serve rankings from the previous snapshot")
	assert.Equal(t, int64(2), third.Version)
}

func TestSearch_SharedCacheNotReusedAcrossServices(t *testing.T) {
	cache := &fakeCache{}
	ctx := context.Background()
	q := app.SearchQuery{Keyword: "가나", Partition: domain.Domestic}

	a := loadedService(t, &fakeRepo{listings: []domain.Listing{
		{ID: "a", Type: domain.Domestic, Name: "가나 호텔", CitySlug: "seoul"},
	}}, cache)
	b := loadedService(t, &fakeRepo{listings: []domain.Listing{
		{ID: "b", Type: domain.Domestic, Name: "가나 모텔", CitySlug: "seoul"},
	}}, cache)
	ca, err := a.Catalog()
	require.NoError(t, err)
	cb, err := b.Catalog()
	require.NoError(t, err)
	require.Equal(t, ca.Version, cb.Version)

	first, err := a.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(first.Items))

	second, err := b.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(second.Items))
	assert.Zero(t, cache.hits)
}

func TestNewCatalog_TokensAreUnique(t *testing.T) {
	x := app.NewCatalog(1, seedListings(), search.Tables{})
	y := app.NewCatalog(1, seedListings(), search.Tables{})
	assert.NotEmpty(t, x.Token)
	assert.NotEqual(t, x.Token, y.Token)
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	repo := &fakeRepo{listings: seedListings()}
	s := loadedService(t, repo, nil)

	repo.listErr = errors.New("db down")
	_, err := s.Reload(context.Background())
	require.Error(t, err)

	c, err := s.Catalog()
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Version)
	assert.Equal(t, 2, c.Count(domain.Domestic))
	assert.Equal(t, 1, c.Count(domain.Overseas))
}

func TestReload_ConcurrentWithSearch(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Reload(ctx)
		}()
		go func() {
			defer wg.Done()
			res, err := s.Search(ctx, app.SearchQuery{Keyword: "강남", Partition: domain.Domestic})
			assert.NoError(t, err)
			assert.Equal(t, []string{"d1"}, ids(res.Items))
		}()
	}
	wg.Wait()

	c, err := s.Catalog()
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.Version)
}

func TestCuratedAliases_OverlayRepositoryRows(t *testing.T) {
	repo := &fakeRepo{listings: seedListings()}
	require.NoError(t, repo.UpsertAliases(context.Background(), domain.Domestic, map[string]string{"판교": "seongnam"}))

	s := app.NewSearchService(repo, app.CuratedAliases{Base: app.StaticAliases(search.DefaultTables()), Repo: repo}, nil, time.Minute)
	_, err := s.Reload(context.Background())
	require.NoError(t, err)

	d, err := s.ResolveLocation(context.Background(), "판교", domain.Domestic)
	require.NoError(t, err)
	assert.True(t, d.FoundInAliases)
	assert.Equal(t, "seongnam", d.FinalSlug)

	d, err = s.ResolveLocation(context.Background(), "강남역", domain.Domestic)
	require.NoError(t, err)
	assert.Equal(t, "seoul", d.FinalSlug)

	_, err = s.ResolveLocation(context.Background(), "강남", "moon")
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

func TestExplain(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)
	ctx := context.Background()

	d, err := s.Explain(ctx, app.ExplainQuery{Keyword: "강남", ListingID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, search.AliasExact, d.Score)
	assert.Equal(t, "seoul", d.Slug)
	assert.True(t, d.Matched)

	d, err = s.Explain(ctx, app.ExplainQuery{Keyword: "강남", ListingID: "d2"})
	require.NoError(t, err)
	assert.False(t, d.Matched)
	assert.Equal(t, search.NoMatch, d.Score)

	_, err = s.Explain(ctx, app.ExplainQuery{Keyword: "강남", ListingID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetListing_SnapshotThenCacheThenRepo(t *testing.T) {
	repo := &fakeRepo{listings: seedListings()}
	cache := &fakeCache{}
	s := loadedService(t, repo, cache)
	ctx := context.Background()

	l, err := s.GetListing(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "강남 스테이", l.Name)
	assert.Zero(t, repo.gets)

	// ingested after the last reload
	require.NoError(t, repo.UpsertListing(ctx, domain.Listing{ID: "d9", Type: domain.Domestic, Name: "새 숙소"}))

	l, err = s.GetListing(ctx, "d9")
	require.NoError(t, err)
	assert.Equal(t, "새 숙소", l.Name)
	assert.Equal(t, 1, repo.gets)

	l, err = s.GetListing(ctx, "d9")
	require.NoError(t, err)
	assert.Equal(t, "새 숙소", l.Name)
	assert.Equal(t, 1, repo.gets, "second read is served from cache")

	_, err = s.GetListing(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWatch_StopsWithContext(t *testing.T) {
	s := loadedService(t, &fakeRepo{listings: seedListings()}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Watch(ctx, 5*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool {
		c, _ := s.Catalog()
		return c.Version > 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "stay_search/internal/adapters/http_server"
	redisad "stay_search/internal/adapters/redis"
	"stay_search/internal/app"
	"stay_search/internal/domain"
	"stay_search/internal/search"
	mysqlrepo "stay_search/internal/storage/mysql"
	"stay_search/internal/testutil/mysqltest"
)

type searchResponse struct {
	Slug    string           `json:"slug"`
	Version int64            `json:"version"`
	Items   []domain.Listing `json:"items"`
}

func getJSON(t *testing.T, base, path string, q url.Values, dst any) int {
	t.Helper()
	u := base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	res, err := http.Get(u)
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK && dst != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(dst))
	}
	return res.StatusCode
}

func TestHTTP_EndToEnd_SearchAfterReload(t *testing.T) {
	repo := mysqlrepo.New(mysqltest.Start(t))
	ctx := context.Background()

	for _, l := range []domain.Listing{
		{ID: "d1", Type: domain.Domestic, Name: "강남 스테이", Location: "서울 강남구", CitySlug: "seoul", Category: "호텔"},
		{ID: "d2", Type: domain.Domestic, Name: "StayHotel", Location: "제주 서귀포시", CitySlug: "jeju", Category: "호텔·리조트"},
		{ID: "o1", Type: domain.Overseas, Name: "Park Hyatt", Location: "Tokyo Shinjuku", CitySlug: "tokyo", Category: "hotel"},
	} {
		require.NoError(t, repo.UpsertListing(ctx, l))
	}
	require.NoError(t, repo.UpsertAliases(ctx, domain.Domestic, map[string]string{"중문": "jeju"}))

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	aliases := app.CuratedAliases{Base: app.StaticAliases(search.DefaultTables()), Repo: repo}
	svc := app.NewSearchService(repo, aliases, cache, time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{S: svc})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// not loaded yet
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL, "/v1/search", url.Values{"q": {"강남"}}, nil))

	res, err := http.Post(ts.URL+"/v1/admin/reload", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out searchResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL, "/v1/search", url.Values{"q": {"강남"}, "type": {"domestic"}}, &out))
	assert.Equal(t, "seoul", out.Slug)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "d1", out.Items[0].ID)

	// curated alias from the database
	out = searchResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL, "/v1/search", url.Values{"q": {"중문"}}, &out))
	assert.Equal(t, "jeju", out.Slug)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "d2", out.Items[0].ID)

	out = searchResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL, "/v1/search", url.Values{"q": {"Stay Hotel"}}, &out))
	require.NotEmpty(t, out.Items)
	assert.Equal(t, "d2", out.Items[0].ID)

	out = searchResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL, "/v1/search", url.Values{"type": {"overseas"}}, &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "o1", out.Items[0].ID)

	var l domain.Listing
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL, "/v1/listings/o1", nil, &l))
	assert.Equal(t, "Park Hyatt", l.Name)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL, "/v1/listings/zzz", nil, nil))
}

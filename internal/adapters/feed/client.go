// Package feed talks to the upstream listing feed that ingestion pulls from.
package feed

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stay_search/internal/adapters/observability"
	"stay_search/internal/domain"
)

const (
	service    = "feed"
	maxRetries = 3
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, errors.New("feed base URL is required")
	}
	if key == "" {
		return nil, errors.New("feed API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnauthorized = errors.New("feed: unauthorized")
	ErrBadPayload   = errors.New("feed: unexpected payload")
)

// ListIDs returns the listing IDs the feed publishes for partition p. The feed
// answers with either a bare array or an {"ids": [...]} envelope, and IDs may
// be numbers or strings.
func (c *Client) ListIDs(ctx context.Context, p domain.Partition) ([]string, error) {
	u := c.base + "/listings?type=" + url.QueryEscape(string(p))
	var raw any
	if err := c.get(ctx, "listings", u, &raw); err != nil {
		return nil, err
	}
	if env, ok := raw.(map[string]any); ok {
		raw = env["ids"]
		if raw == nil {
			raw = env["items"]
		}
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: listing index is %T", ErrBadPayload, raw)
	}
	ids := make([]string, 0, len(arr))
	for _, v := range arr {
		switch t := v.(type) {
		case string:
			if t = strings.TrimSpace(t); t != "" {
				ids = append(ids, t)
			}
		case float64:
			ids = append(ids, strconv.FormatFloat(t, 'f', -1, 64))
		case map[string]any:
			if id, ok := t["id"].(string); ok && id != "" {
				ids = append(ids, id)
			} else if n, ok := t["id"].(float64); ok {
				ids = append(ids, strconv.FormatFloat(n, 'f', -1, 64))
			}
		}
	}
	return ids, nil
}

// GetListing fetches the raw payload of one listing.
func (c *Client) GetListing(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "listing", c.base+"/listings/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: empty listing %s", ErrBadPayload, id)
	}
	return out, nil
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-API-Key", c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "stay-search/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxRetries && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrBadPayload, err)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("feed %s: %w", endpoint, domain.ErrNotFound)

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden, http.StatusGone:
			resp.Body.Close()
			return fmt.Errorf("feed %s: %w", endpoint, domain.ErrAccessDenied)

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < maxRetries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Zero when absent.
func retryAfter(resp *http.Response) time.Duration {
	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	return base + time.Duration(0.5*float64(b[0])/255.0*float64(base))
}

package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"stay_search/internal/domain"
	"stay_search/internal/search"
)

type IngestionService struct {
	feed     domain.ListingFeed
	repo     domain.ListingRepository
	cache    domain.Cache
	resolver *search.Resolver
}

func NewIngestionService(f domain.ListingFeed, r domain.ListingRepository, cache domain.Cache, res *search.Resolver) *IngestionService {
	if res == nil {
		res = search.NewResolver(search.DefaultTables().Merged())
	}
	return &IngestionService{feed: f, repo: r, cache: cache, resolver: res}
}

// ListIDs fetches the listing IDs of every partition concurrently.
func (s *IngestionService) ListIDs(ctx context.Context) (map[domain.Partition][]string, error) {
	results := make([][]string, len(domain.Partitions))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range domain.Partitions {
		g.Go(func() error {
			ids, err := s.feed.ListIDs(gctx, p)
			if err != nil {
				return fmt.Errorf("list %s ids: %w", p, err)
			}
			results[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[domain.Partition][]string, len(domain.Partitions))
	for i, p := range domain.Partitions {
		out[p] = results[i]
	}
	return out, nil
}

// IngestListing fetches one listing and upserts it. Missing or forbidden
// listings are recorded as misses and are not errors.
func (s *IngestionService) IngestListing(ctx context.Context, id string, p domain.Partition) error {
	payload, err := s.feed.GetListing(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			_ = s.repo.LogMiss(ctx, id, 404, "not found")
			s.invalidate(ctx, id)
			return nil
		case errors.Is(err, domain.ErrAccessDenied):
			_ = s.repo.LogMiss(ctx, id, 403, "inactive")
			s.invalidate(ctx, id)
			return nil
		}
		return err
	}

	l, err := mapListing(payload, p, s.resolver)
	if err != nil {
		_ = s.repo.LogMiss(ctx, id, 422, err.Error())
		return nil
	}
	if l.ID != id {
		return fmt.Errorf("feed returned listing %q for id %q", l.ID, id)
	}
	if err := s.repo.UpsertListing(ctx, l); err != nil {
		return fmt.Errorf("upsert listing %s: %w", id, err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *IngestionService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, listingCacheKey(id))
}

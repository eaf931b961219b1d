package domain

import "context"

type ListingRepository interface {
	// Write paths
	UpsertListing(ctx context.Context, l Listing) error
	LogMiss(ctx context.Context, id string, status int, reason string) error

	// Read paths
	GetListing(ctx context.Context, id string) (Listing, error)
	ListListings(ctx context.Context, p Partition) ([]Listing, error)
}

// AliasRepository stores curated alias rows per partition (alias -> slug).
type AliasRepository interface {
	ListAliases(ctx context.Context, p Partition) (map[string]string, error)
	UpsertAliases(ctx context.Context, p Partition, rows map[string]string) error
}

type ListingFeed interface {
	ListIDs(ctx context.Context, p Partition) ([]string, error)
	GetListing(ctx context.Context, id string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

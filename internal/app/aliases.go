package app

import (
	"context"
	"fmt"

	"stay_search/internal/domain"
	"stay_search/internal/search"
)

// AliasLoader produces the alias vocabulary for a catalog build.
type AliasLoader interface {
	Load(ctx context.Context) (search.Tables, error)
}

// StaticAliases serves a fixed vocabulary.
type StaticAliases search.Tables

func (s StaticAliases) Load(context.Context) (search.Tables, error) { return search.Tables(s), nil }

// CuratedAliases lays rows curated in the repository over a base vocabulary.
type CuratedAliases struct {
	Base AliasLoader
	Repo domain.AliasRepository
}

func (c CuratedAliases) Load(ctx context.Context) (search.Tables, error) {
	base, err := c.Base.Load(ctx)
	if err != nil {
		return search.Tables{}, err
	}
	if c.Repo == nil {
		return base, nil
	}
	var extra search.Tables
	for _, p := range domain.Partitions {
		rows, err := c.Repo.ListAliases(ctx, p)
		if err != nil {
			return search.Tables{}, fmt.Errorf("list %s aliases: %w", p, err)
		}
		switch p {
		case domain.Domestic:
			extra.Domestic = search.NewTable(rows)
		case domain.Overseas:
			extra.Overseas = search.NewTable(rows)
		}
	}
	return base.Overlay(extra), nil
}

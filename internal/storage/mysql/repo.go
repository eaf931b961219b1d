package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"stay_search/internal/domain"
)

// valJSON marshals v for a nullable JSON column; empty slices store NULL.
func valJSON[T any](v []T) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) error {
	imgs, err := valJSON(l.Images)
	if err != nil {
		return err
	}
	amen, err := valJSON(l.Amenities)
	if err != nil {
		return err
	}
	rooms, err := valJSON(l.Rooms)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertListingSQL,
		l.ID,
		string(l.Type),
		l.Name,
		l.Location,
		l.CitySlug,
		l.Category,
		valStr(l.Description),
		imgs,
		amen,
		rooms,
	)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, id string, status int, reason string) error {
	if len(reason) > 255 {
		reason = reason[:255]
	}
	_, err := r.db.ExecContext(ctx, insertMissSQL, id, status, reason)
	return err
}

func (r *Repo) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, getListingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, err
}

func (r *Repo) ListListings(ctx context.Context, p domain.Partition) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, listListingsSQL, string(p))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) ListAliases(ctx context.Context, p domain.Partition) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, listAliasesSQL, string(p))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var alias, slug string
		if err := rows.Scan(&alias, &slug); err != nil {
			return nil, err
		}
		out[alias] = slug
	}
	return out, rows.Err()
}

func (r *Repo) UpsertAliases(ctx context.Context, p domain.Partition, rows map[string]string) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*3)
	for alias, slug := range rows {
		values = append(values, "(?,?,?)")
		args = append(args, string(p), alias, slug)
	}
	_, err := r.db.ExecContext(ctx, upsertAliasesPrefix+strings.Join(values, ",")+upsertAliasesOnDup, args...)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (domain.Listing, error) {
	var (
		l                      domain.Listing
		typ                    string
		desc                   sql.NullString
		imgs, amenities, rooms []byte
	)
	if err := s.Scan(&l.ID, &typ, &l.Name, &l.Location, &l.CitySlug, &l.Category,
		&desc, &imgs, &amenities, &rooms); err != nil {
		return domain.Listing{}, err
	}
	l.Type = domain.Partition(typ)
	l.Description = desc.String
	if err := unmarshalNullable(imgs, &l.Images); err != nil {
		return domain.Listing{}, fmt.Errorf("listing %s images: %w", l.ID, err)
	}
	if err := unmarshalNullable(amenities, &l.Amenities); err != nil {
		return domain.Listing{}, fmt.Errorf("listing %s amenities: %w", l.ID, err)
	}
	if err := unmarshalNullable(rooms, &l.Rooms); err != nil {
		return domain.Listing{}, fmt.Errorf("listing %s rooms: %w", l.ID, err)
	}
	return l, nil
}

func unmarshalNullable(b []byte, dst any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

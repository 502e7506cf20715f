package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainops/chainops/internal/platform/httpx"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(address, ''), active
		FROM locations
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Active); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *Repository) GetLocation(ctx context.Context, id string) (Location, error) {
	var loc Location
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(address, ''), active
		FROM locations
		WHERE id = $1`, id).
		Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Location{}, httpx.ErrNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("get location %q: %w", id, err)
	}
	return loc, nil
}

// UpsertLocation registers a location or refreshes its details. Sync jobs
// replay the full upstream feed, so insert and update share one statement.
func (r *Repository) UpsertLocation(ctx context.Context, loc Location) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO locations (id, name, address, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, address = EXCLUDED.address, active = EXCLUDED.active`,
		loc.ID, loc.Name, loc.Address, loc.Active)
	if err != nil {
		return fmt.Errorf("upsert location %q: %w", loc.ID, err)
	}
	return nil
}

func (r *Repository) DeactivateMissing(ctx context.Context, keepIDs []string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE locations
		SET active = FALSE
		WHERE active AND NOT (id = ANY($1))`, keepIDs)
	if err != nil {
		return 0, fmt.Errorf("deactivate missing locations: %w", err)
	}
	return tag.RowsAffected(), nil
}

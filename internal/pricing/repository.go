package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/chainops/chainops/internal/platform/httpx"
)

const mappingColumns = `id, location_id, item_code, COALESCE(description, ''), price::text, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanMapping(row pgx.Row) (Mapping, error) {
	var m Mapping
	var price string
	if err := row.Scan(&m.ID, &m.LocationID, &m.ItemCode, &m.Description, &price, &m.UpdatedAt); err != nil {
		return Mapping{}, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return Mapping{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	m.Price = parsed
	return m, nil
}

func (r *Repository) ListByLocation(ctx context.Context, locationID string) ([]Mapping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+mappingColumns+`
		FROM price_mappings
		WHERE location_id = $1
		ORDER BY item_code`, locationID)
	if err != nil {
		return nil, fmt.Errorf("list price mappings: %w", err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) GetMapping(ctx context.Context, id int64) (Mapping, error) {
	m, err := scanMapping(r.pool.QueryRow(ctx, `
		SELECT `+mappingColumns+`
		FROM price_mappings
		WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Mapping{}, httpx.ErrNotFound
	}
	if err != nil {
		return Mapping{}, fmt.Errorf("get price mapping %d: %w", id, err)
	}
	return m, nil
}

// UpsertMapping creates or refreshes the mapping for (location, item).
func (r *Repository) UpsertMapping(ctx context.Context, input NewMapping) (Mapping, error) {
	m, err := scanMapping(r.pool.QueryRow(ctx, `
		INSERT INTO price_mappings (location_id, item_code, description, price, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (location_id, item_code) DO UPDATE
		SET description = EXCLUDED.description, price = EXCLUDED.price, updated_at = NOW()
		RETURNING `+mappingColumns,
		input.LocationID, input.ItemCode, input.Description, input.Price.String()))
	if err != nil {
		return Mapping{}, fmt.Errorf("upsert price mapping: %w", err)
	}
	return m, nil
}

func (r *Repository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (Mapping, error) {
	m, err := scanMapping(r.pool.QueryRow(ctx, `
		UPDATE price_mappings
		SET price = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+mappingColumns, id, price.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return Mapping{}, httpx.ErrNotFound
	}
	if err != nil {
		return Mapping{}, fmt.Errorf("update price %d: %w", id, err)
	}
	return m, nil
}

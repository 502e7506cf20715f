package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainops/chainops/internal/platform/db"
	"github.com/chainops/chainops/internal/platform/httpx"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(location_ids, '{}')
		FROM location_groups
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.LocationIDs); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) GetGroup(ctx context.Context, id int64) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(location_ids, '{}')
		FROM location_groups
		WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.LocationIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, httpx.ErrNotFound
	}
	if err != nil {
		return Group{}, fmt.Errorf("get group %d: %w", id, err)
	}
	return g, nil
}

func (r *Repository) CreateGroup(ctx context.Context, name string, locationIDs []string) (Group, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO location_groups (name, location_ids)
		VALUES ($1, $2)
		RETURNING id`, name, locationIDs).Scan(&id)
	if err != nil {
		return Group{}, fmt.Errorf("insert group: %w", err)
	}
	return r.GetGroup(ctx, id)
}

// DeleteGroup removes the group and detaches its members. Members lose
// their group and location assignments in the same transaction.
func (r *Repository) DeleteGroup(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `SELECT 1 FROM location_groups WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("check group: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `
			UPDATE users
			SET group_id = NULL, location_ids = '{}', updated_at = NOW()
			WHERE group_id = $1`, id); err != nil {
			return fmt.Errorf("detach group members: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM location_groups WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
}

func (r *Repository) ReplaceLocations(ctx context.Context, id int64, locationIDs []string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE location_groups
		SET location_ids = $2
		WHERE id = $1`, id, locationIDs)
	if err != nil {
		return fmt.Errorf("update group locations: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

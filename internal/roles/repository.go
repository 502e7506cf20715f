package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
)

// Repository reads the role catalogue. Roles are seeded reference data and
// never mutated through the API.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListRoles(ctx context.Context) ([]access.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, '')
		FROM roles
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []access.Role
	for rows.Next() {
		var role access.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *Repository) GetRoleByName(ctx context.Context, name string) (access.Role, error) {
	var role access.Role
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, '')
		FROM roles
		WHERE UPPER(name) = UPPER($1)`, name).
		Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.Role{}, httpx.ErrNotFound
	}
	if err != nil {
		return access.Role{}, fmt.Errorf("get role %q: %w", name, err)
	}
	return role, nil
}

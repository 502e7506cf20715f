package teams

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/db"
	"github.com/chainops/chainops/internal/platform/httpx"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTeams returns every team with its role assignments attached.
func (r *Repository) ListTeams(ctx context.Context) ([]access.Team, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_name, is_admin
		FROM teams
		ORDER BY team_name`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []access.Team
	index := map[int64]int{}
	for rows.Next() {
		var t access.Team
		if err := rows.Scan(&t.ID, &t.TeamName, &t.IsAdmin); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		index[t.ID] = len(teams)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roleRows, err := r.pool.Query(ctx, `
		SELECT tr.id, tr.team_id, tr.role_id, ro.name, COALESCE(ro.description, '')
		FROM team_roles tr
		JOIN roles ro ON ro.id = tr.role_id
		ORDER BY tr.team_id, ro.name`)
	if err != nil {
		return nil, fmt.Errorf("list team roles: %w", err)
	}
	defer roleRows.Close()

	for roleRows.Next() {
		var tr access.TeamRole
		if err := roleRows.Scan(&tr.ID, &tr.TeamID, &tr.RoleID, &tr.Role.Name, &tr.Role.Description); err != nil {
			return nil, fmt.Errorf("scan team role: %w", err)
		}
		tr.Role.ID = tr.RoleID
		if i, ok := index[tr.TeamID]; ok {
			teams[i].TeamRoles = append(teams[i].TeamRoles, tr)
		}
	}
	return teams, roleRows.Err()
}

func (r *Repository) GetTeam(ctx context.Context, id int64) (access.Team, error) {
	var t access.Team
	err := r.pool.QueryRow(ctx, `
		SELECT id, team_name, is_admin
		FROM teams
		WHERE id = $1`, id).
		Scan(&t.ID, &t.TeamName, &t.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.Team{}, httpx.ErrNotFound
	}
	if err != nil {
		return access.Team{}, fmt.Errorf("get team %d: %w", id, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT tr.id, tr.team_id, tr.role_id, ro.name, COALESCE(ro.description, '')
		FROM team_roles tr
		JOIN roles ro ON ro.id = tr.role_id
		WHERE tr.team_id = $1
		ORDER BY ro.name`, id)
	if err != nil {
		return access.Team{}, fmt.Errorf("get team roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tr access.TeamRole
		if err := rows.Scan(&tr.ID, &tr.TeamID, &tr.RoleID, &tr.Role.Name, &tr.Role.Description); err != nil {
			return access.Team{}, fmt.Errorf("scan team role: %w", err)
		}
		tr.Role.ID = tr.RoleID
		t.TeamRoles = append(t.TeamRoles, tr)
	}
	return t, rows.Err()
}

// CreateTeam inserts the team and its initial role set in one transaction.
// Role names are resolved case-insensitively against the catalogue; an
// unknown name aborts the whole insert.
func (r *Repository) CreateTeam(ctx context.Context, teamName string, isAdmin bool, roleNames []string) (int64, error) {
	var teamID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO teams (team_name, is_admin)
			VALUES ($1, $2)
			RETURNING id`, teamName, isAdmin).Scan(&teamID); err != nil {
			return fmt.Errorf("insert team: %w", err)
		}
		return attachRoles(ctx, tx, teamID, roleNames)
	})
	if err != nil {
		return 0, err
	}
	return teamID, nil
}

// ReplaceRoles swaps the team's role set atomically: delete everything, then
// reattach the requested names. Readers never observe a half-updated set.
func (r *Repository) ReplaceRoles(ctx context.Context, teamID int64, roleNames []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `SELECT id FROM teams WHERE id = $1`, teamID)
		if err != nil {
			return fmt.Errorf("check team: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM team_roles WHERE team_id = $1`, teamID); err != nil {
			return fmt.Errorf("clear team roles: %w", err)
		}
		return attachRoles(ctx, tx, teamID, roleNames)
	})
}

func attachRoles(ctx context.Context, tx pgx.Tx, teamID int64, roleNames []string) error {
	for _, name := range roleNames {
		var roleID int64
		err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE UPPER(name) = UPPER($1)`, name).Scan(&roleID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, name)
		}
		if err != nil {
			return fmt.Errorf("resolve role %q: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO team_roles (team_id, role_id)
			VALUES ($1, $2)
			ON CONFLICT (team_id, role_id) DO NOTHING`, teamID, roleID); err != nil {
			return fmt.Errorf("attach role %q: %w", name, err)
		}
	}
	return nil
}

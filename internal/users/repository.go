package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainops/chainops/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `
	u.user_id, u.username, u.email, u.team_id, COALESCE(t.team_name, ''),
	u.group_id, u.location_ids, u.is_disabled, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.TeamID, &u.TeamName,
		&u.GroupID, &u.LocationIDs, &u.IsDisabled, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ListUsers returns all users with their team names.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN teams t ON t.id = u.team_id
		ORDER BY u.user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser fetches one user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN teams t ON t.id = u.team_id
		WHERE u.user_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// ListUsersByRole returns users whose team carries the named role.
func (r *Repository) ListUsersByRole(ctx context.Context, roleName string) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN teams t ON t.id = u.team_id
		JOIN team_roles tr ON tr.team_id = t.id
		JOIN roles ro ON ro.id = tr.role_id
		WHERE UPPER(ro.name) = UPPER($1)
		ORDER BY u.user_id`, roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsersByLocation returns users whose assigned locations include the id.
func (r *Repository) ListUsersByLocation(ctx context.Context, locationID string) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN teams t ON t.id = u.team_id
		WHERE $1 = ANY(u.location_ids)
		ORDER BY u.user_id`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateLocations replaces the user's assigned location set.
func (r *Repository) UpdateLocations(ctx context.Context, userID int64, locationIDs []string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET location_ids = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, locationIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// UpdateTeam reassigns the user to another team.
func (r *Repository) UpdateTeam(ctx context.Context, userID, teamID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET team_id = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// UpdateGroup sets or clears the user's group assignment.
func (r *Repository) UpdateGroup(ctx context.Context, userID int64, groupID *int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET group_id = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, groupID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// SetDisabled flips the account's disabled flag.
func (r *Repository) SetDisabled(ctx context.Context, userID int64, disabled bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET is_disabled = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, disabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// DeleteUser removes the account permanently.
func (r *Repository) DeleteUser(ctx context.Context, userID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// CreateUser inserts a new user and returns it.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string, teamID int64, locationIDs []string) (User, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, team_id, location_ids, is_disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		RETURNING user_id`,
		username, email, passwordHash, teamID, locationIDs).Scan(&id)
	if err != nil {
		return User{}, err
	}
	return r.GetUser(ctx, id)
}

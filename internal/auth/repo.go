package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	LoadUser(ctx context.Context, userID int64) (*access.User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, username, email, password_hash, is_disabled, created_at, updated_at
		FROM users
		WHERE email = $1`, email)
	var acc Account
	if err := row.Scan(&acc.ID, &acc.Username, &acc.Email, &acc.PasswordHash, &acc.IsDisabled, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// LoadUser assembles the authorization snapshot for a user: team with its
// role assignments, assigned locations and group. This is the record every
// access decision is derived from.
func (r *PGRepository) LoadUser(ctx context.Context, userID int64) (*access.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT u.user_id, u.username, u.location_ids, u.group_id, u.team_id
		FROM users u
		WHERE u.user_id = $1 AND NOT u.is_disabled`, userID)

	var (
		user   access.User
		teamID *int64
	)
	if err := row.Scan(&user.ID, &user.Username, &user.LocationIDs, &user.GroupID, &teamID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if teamID == nil {
		return &user, nil
	}

	team := access.Team{ID: *teamID}
	if err := r.pool.QueryRow(ctx, `
		SELECT team_name, is_admin FROM teams WHERE id = $1`, *teamID).
		Scan(&team.TeamName, &team.IsAdmin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Dangling team reference: return the user without a team so
			// every predicate fails closed.
			return &user, nil
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT tr.id, tr.team_id, tr.role_id, ro.id, ro.name, COALESCE(ro.description, '')
		FROM team_roles tr
		JOIN roles ro ON ro.id = tr.role_id
		WHERE tr.team_id = $1
		ORDER BY tr.id`, *teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tr access.TeamRole
		if err := rows.Scan(&tr.ID, &tr.TeamID, &tr.RoleID, &tr.Role.ID, &tr.Role.Name, &tr.Role.Description); err != nil {
			return nil, err
		}
		team.TeamRoles = append(team.TeamRoles, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	user.Team = &team
	return &user, nil
}

// CreateSession persists a new login session for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
		VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)

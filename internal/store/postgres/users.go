package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/internal/dbx"
)

const userColumns = `id, name, email, role, is_verified, avatar_public_id, avatar_url, created_at, updated_at`

// Users is the Postgres coursehub.UserStore.
type Users struct {
	db dbx.DBTX
}

func NewUsers(db dbx.DBTX) *Users {
	return &Users{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (*coursehub.User, error) {
	u := &coursehub.User{}
	dest := []any{
		&u.ID, &u.Name, &u.Email, &u.Role, &u.IsVerified,
		&u.Avatar.PublicID, &u.Avatar.URL, &u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, coursehub.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *Users) UserByEmail(ctx context.Context, email string) (*coursehub.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))
	return scanUser(row)
}

func (r *Users) UserByEmailWithPassword(ctx context.Context, email string) (*coursehub.User, error) {
	var hash string
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))
	u, err := scanUser(row, &hash)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	return u, nil
}

func (r *Users) UserByID(ctx context.Context, id string) (*coursehub.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *Users) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", coursehub.ErrUserNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return hash, nil
}

// CreateUser inserts user. A conflict on users_email_key returns
// coursehub.ErrDuplicateEmail.
func (r *Users) CreateUser(ctx context.Context, user *coursehub.User) (*coursehub.User, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, is_verified, avatar_public_id, avatar_url)
		 VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8)
		 RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsVerified,
		user.Avatar.PublicID, user.Avatar.URL)

	created, err := scanUser(row)
	if err != nil {
		if isEmailConflict(err) {
			return nil, coursehub.ErrDuplicateEmail
		}
		return nil, err
	}
	return created, nil
}

func (r *Users) UpdateProfile(ctx context.Context, id string, update coursehub.ProfileUpdate) (*coursehub.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name), email = COALESCE(lower($3), email), updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, update.Name, update.Email)

	u, err := scanUser(row)
	if err != nil {
		if isEmailConflict(err) {
			return nil, coursehub.ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

func (r *Users) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return coursehub.ErrUserNotFound
	}
	return nil
}

func (r *Users) UpdateAvatar(ctx context.Context, id string, avatar coursehub.Avatar) (*coursehub.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users SET avatar_public_id = $2, avatar_url = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, avatar.PublicID, avatar.URL)
	return scanUser(row)
}

// SetRole changes a user's role. The server uses it to promote the
// configured admin account.
func (r *Users) SetRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return coursehub.ErrUserNotFound
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shuyan0723/study--student-mangement/types"
)

const userColumns = `
	id, username, COALESCE(email, ''), COALESCE(avatar_url, ''), role, status,
	password_hash, login_attempts, locked_until, last_login, created_at, updated_at`

// UserRepository handles persistence for user accounts. Soft-deleted
// rows are invisible to every query.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT` + userColumns + `
		FROM users
		WHERE username = $1 AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, username, email, avatar_url, role, status, password_hash,
			login_attempts, locked_until, last_login, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.AvatarURL,
		user.Role,
		user.Status,
		user.PasswordHash,
		user.LoginAttempts,
		user.LockedUntil,
		user.LastLogin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return types.User{}, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET username = $1,
			email = NULLIF($2, ''),
			avatar_url = NULLIF($3, ''),
			role = $4,
			status = $5,
			password_hash = $6,
			updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.AvatarURL,
		user.Role,
		user.Status,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// UpdateLoginState persists the lockout-relevant slice of the account:
// attempt counter, status, lock expiry, and last successful login. Used
// by the login flow so credential writes never touch the rest of the row.
func (r *UserRepository) UpdateLoginState(ctx context.Context, user types.User) error {
	const query = `
		UPDATE users
		SET login_attempts = $1,
			status = $2,
			locked_until = $3,
			last_login = $4,
			updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.LoginAttempts,
		user.Status,
		user.LockedUntil,
		user.LastLogin,
		time.Now(),
		user.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes the account.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.AvatarURL,
		&user.Role,
		&user.Status,
		&user.PasswordHash,
		&user.LoginAttempts,
		&user.LockedUntil,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

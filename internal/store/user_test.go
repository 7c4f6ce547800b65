package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyan0723/study--student-mangement/types"
)

func newUserRepoMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func userRows(user types.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "avatar_url", "role", "status",
		"password_hash", "login_attempts", "locked_until", "last_login",
		"created_at", "updated_at",
	}).AddRow(
		user.ID, user.Username, user.Email, user.AvatarURL, user.Role, user.Status,
		user.PasswordHash, user.LoginAttempts, nil, nil,
		user.CreatedAt, user.UpdatedAt,
	)
}

func TestUserGetByUsername(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	want := types.User{
		ID:            "user-alice",
		Username:      "alice",
		Email:         "alice@example.com",
		Role:          types.RoleStudent,
		Status:        types.StatusActive,
		PasswordHash:  "hash",
		LoginAttempts: 2,
		CreatedAt:     time.Now().Add(-time.Hour),
		UpdatedAt:     time.Now(),
	}

	mock.ExpectQuery(`SELECT(.|\s)+FROM users\s+WHERE username = \$1 AND deleted_at IS NULL`).
		WithArgs("alice").
		WillReturnRows(userRows(want))

	got, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, 2, got.LoginAttempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByUsernameNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`SELECT(.|\s)+FROM users`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicate(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), types.User{
		ID:       "user-bob",
		Username: "bob",
		Role:     types.RoleStudent,
		Status:   types.StatusActive,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateLoginState(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	lockedUntil := time.Now().Add(30 * time.Minute)
	user := types.User{
		ID:            "user-alice",
		Status:        types.StatusLocked,
		LoginAttempts: 5,
		LockedUntil:   &lockedUntil,
	}

	mock.ExpectExec(`UPDATE users\s+SET login_attempts = \$1`).
		WithArgs(5, types.StatusLocked, lockedUntil, nil, sqlmock.AnyArg(), "user-alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLoginState(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateLoginStateMissingRow(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(`UPDATE users\s+SET login_attempts = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLoginState(context.Background(), types.User{ID: "gone"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserSoftDelete(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(`UPDATE users\s+SET deleted_at = \$1`).
		WithArgs(sqlmock.AnyArg(), "user-alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-alice"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

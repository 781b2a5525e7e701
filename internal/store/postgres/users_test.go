package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/coursehub"
)

var userCols = []string{"id", "name", "email", "role", "is_verified", "avatar_public_id", "avatar_url", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func userRow(ts time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow("u-1", "Ada", "ada@example.com", "user", false, "", "", ts, ts)
}

func TestCreateUserReturnsRow(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WithArgs("u-1", "Ada", "Ada@Example.com", "hash", "user", false, "", "").
		WillReturnRows(userRow(ts))

	got, err := NewUsers(db).CreateUser(context.Background(), &coursehub.User{
		ID: "u-1", Name: "Ada", Email: "Ada@Example.com", PasswordHash: "hash", Role: "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, ts, got.CreatedAt)
	assert.Empty(t, got.PasswordHash)
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := NewUsers(db).CreateUser(context.Background(), &coursehub.User{ID: "u-1", Email: "a@b.c"})
	assert.ErrorIs(t, err, coursehub.ErrDuplicateEmail)
}

func TestCreateUserOtherConstraintIsNotDuplicate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

	_, err := NewUsers(db).CreateUser(context.Background(), &coursehub.User{ID: "u-1", Email: "a@b.c"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, coursehub.ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "db error")
}

func TestUserByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUsers(db).UserByEmail(context.Background(), " ghost@example.com ")
	assert.ErrorIs(t, err, coursehub.ErrUserNotFound)
}

func TestUserByEmailWithPasswordScansHash(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Now().UTC()

	rows := sqlmock.NewRows(append(append([]string{}, userCols...), "password_hash")).
		AddRow("u-1", "Ada", "ada@example.com", "admin", true, "avatars/1", "https://cdn/1", ts, ts, "$argon2id$...")
	mock.ExpectQuery(`(?s)password_hash\s+FROM\s+users`).
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	u, err := NewUsers(db).UserByEmailWithPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$...", u.PasswordHash)
	assert.Equal(t, "admin", u.Role)
	assert.True(t, u.IsVerified)
	assert.Equal(t, coursehub.Avatar{PublicID: "avatars/1", URL: "https://cdn/1"}, u.Avatar)
}

func TestEmailExists(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewUsers(db).EmailExists(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEmailExistsWrapsDBError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS`).WillReturnError(errors.New("db down"))

	_, err := NewUsers(db).EmailExists(context.Background(), "ada@example.com")
	assert.ErrorContains(t, err, "db error: db down")
}

func TestPasswordHash(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT\s+password_hash\s+FROM\s+users\s+WHERE\s+id`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow("h"))
	mock.ExpectQuery(`SELECT\s+password_hash\s+FROM\s+users\s+WHERE\s+id`).
		WithArgs("u-2").
		WillReturnError(sql.ErrNoRows)

	users := NewUsers(db)
	hash, err := users.PasswordHash(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "h", hash)

	_, err = users.PasswordHash(context.Background(), "u-2")
	assert.ErrorIs(t, err, coursehub.ErrUserNotFound)
}

func TestUpdateProfilePassesNilForUnchangedFields(t *testing.T) {
	db, mock := newMock(t)
	name := "Grace"

	mock.ExpectQuery(`(?s)UPDATE\s+users.*COALESCE`).
		WithArgs("u-1", "Grace", nil).
		WillReturnRows(userRow(time.Now()))

	_, err := NewUsers(db).UpdateProfile(context.Background(), "u-1", coursehub.ProfileUpdate{Name: &name})
	require.NoError(t, err)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	db, mock := newMock(t)
	email := "taken@example.com"

	mock.ExpectQuery(`UPDATE\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := NewUsers(db).UpdateProfile(context.Background(), "u-1", coursehub.ProfileUpdate{Email: &email})
	assert.ErrorIs(t, err, coursehub.ErrDuplicateEmail)
}

func TestUpdatePasswordHashMissingRow(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("u-1", "new").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUsers(db).UpdatePasswordHash(context.Background(), "u-1", "new")
	assert.ErrorIs(t, err, coursehub.ErrUserNotFound)
}

func TestUpdateAvatarAndSetRole(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`UPDATE\s+users\s+SET\s+avatar_public_id`).
		WithArgs("u-1", "avatars/2", "https://cdn/2").
		WillReturnRows(userRow(time.Now()))
	mock.ExpectExec(`UPDATE\s+users\s+SET\s+role`).
		WithArgs("u-1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	users := NewUsers(db)
	_, err := users.UpdateAvatar(context.Background(), "u-1", coursehub.Avatar{PublicID: "avatars/2", URL: "https://cdn/2"})
	require.NoError(t, err)
	require.NoError(t, users.SetRole(context.Background(), "u-1", "admin"))
}

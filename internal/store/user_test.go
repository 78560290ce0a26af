package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/minetrack/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func strPtr(s string) *string { return &s }

var userRowColumns = []string{"id", "fullname", "email", "password", "avatar_url", "phone", "role", "position", "created_at", "updated_at"}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(7, "Ann", "ann@example.com", "hash", nil, "+7", "admin", nil, now, now))

	user, err := repo.GetByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "admin", user.Role)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Nil(t, user.AvatarURL)
	require.NotNil(t, user.Phone)
	assert.Equal(t, "+7", *user.Phone)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("Ann", "ann@example.com", "hash", nil, "+7", "user", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	user, err := repo.Create(context.Background(), types.User{
		Fullname:     "Ann",
		Email:        "ann@example.com",
		PasswordHash: "hash",
		Phone:        strPtr("+7"),
		Role:         types.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), types.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepository_UpdateProfileNeverWritesRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery("^" + regexp.QuoteMeta(`UPDATE users SET phone = $1, position = $2, updated_at = $3 WHERE id = $4 RETURNING `+userColumns) + "$").
		WithArgs("123", nil, sqlmock.AnyArg(), 7).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(7, "Ann", "ann@example.com", "hash", nil, "123", "user", nil, now, now))

	user, err := repo.UpdateProfile(context.Background(), 7, types.ProfileUpdate{
		Phone:    types.SetString("123"),
		Position: types.OptionalString{Set: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)
	assert.Nil(t, user.Position)
}

func TestUserRepository_UpdateProfile_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET fullname = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs("Ann", sqlmock.AnyArg(), 9).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateProfile(context.Background(), 9, types.ProfileUpdate{Fullname: types.SetString("Ann")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery("^" + regexp.QuoteMeta(`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3 RETURNING `+userColumns) + "$").
		WithArgs("admin", sqlmock.AnyArg(), 4).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(4, "Bob", "bob@example.com", "hash", nil, nil, "admin", "CEO", now, now))

	user, err := repo.UpdateRole(context.Background(), 4, types.RoleUpdate{Role: strPtr("admin")})
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
	assert.Equal(t, "CEO", *user.Position)
}

func TestUserRepository_UpdateAvatarURL(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery("^" + regexp.QuoteMeta(`UPDATE users SET avatar_url = $1, updated_at = $2 WHERE id = $3 RETURNING `+userColumns) + "$").
		WithArgs("/static/avatars/user_2.png", sqlmock.AnyArg(), 2).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(2, "B", "b@example.com", "h", "/static/avatars/user_2.png", nil, "user", nil, now, now))

	user, err := repo.UpdateAvatarURL(context.Background(), 2, "/static/avatars/user_2.png")
	require.NoError(t, err)
	assert.Equal(t, "/static/avatars/user_2.png", *user.AvatarURL)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs("new-hash", sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), 5, "new-hash"))
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "A", "a@example.com", "h", nil, nil, "superadmin", "CEO", now, now).
			AddRow(2, "B", "b@example.com", "h", "/static/avatars/user_2.jpg", nil, "user", nil, now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "CEO", *users[0].Position)
	assert.Equal(t, "/static/avatars/user_2.jpg", *users[1].AvatarURL)
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)
}

func TestTranslateError_PassesThroughOthers(t *testing.T) {
	boom := errors.New("boom")
	assert.Same(t, boom, translateError(boom))
	assert.NotErrorIs(t, translateError(&pq.Error{Code: "23503"}), ErrConflict)
}

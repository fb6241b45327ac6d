package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMockService(t *testing.T) (IUserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserService(db, bcrypt.MinCost), mock
}

func TestRegister(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicate(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthenticate(t *testing.T) {
	svc, mock := newMockService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"username", "email", "password_hash", "avatar", "bio",
		"theme_preference", "online", "last_seen",
	}).AddRow("alice", "alice@example.com", string(hash), "", "hi", "dark", false, time.Now())

	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("alice").
		WillReturnRows(rows)

	dto, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", dto.Username)
	assert.Equal(t, "dark", dto.ThemePreference)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, mock := newMockService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"username", "email", "password_hash", "avatar", "bio",
		"theme_preference", "online", "last_seen",
	}).AddRow("alice", "alice@example.com", string(hash), "", "", "light", false, time.Now())

	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("alice").
		WillReturnRows(rows)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFindByUsernameNotFound(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`SELECT username, email, avatar`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))

	_, err := svc.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetOnlineAndLastSeen(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`UPDATE users SET online`).
		WithArgs("alice", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET last_seen`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.SetOnline(context.Background(), "alice", true))
	require.NoError(t, svc.SetLastSeen(context.Background(), "alice", time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}

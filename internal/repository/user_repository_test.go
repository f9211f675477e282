package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-portal/internal/model"
)

var userColumns = []string{"id", "name", "username", "email", "password_hash",
	"role_id", "status_id", "online_status_id", "created_at", "updated_at",
	"name", "status", "online"}

func newMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestUserRepo_FindByIdentifier(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()
	now := time.Now()

	t.Run("EmailPreferred", func(t *testing.T) {
		rows := sqlmock.NewRows(userColumns).
			AddRow(3, "Alice", "alice", "alice@example.com", "hash", 6, 3, nil, now, now, "Tourist", "Approved", "")
		mock.ExpectQuery(`WHERE u.email = \? OR u.username = \? ORDER BY \(u.email = \?\) DESC, u.id ASC LIMIT 1`).
			WithArgs("alice@example.com", "Alice@Example.com", "alice@example.com").
			WillReturnRows(rows)

		u, err := repo.FindByIdentifier(ctx, "  Alice@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), u.ID)
		assert.Equal(t, "Tourist", u.RoleName)
		assert.Equal(t, "Approved", u.StatusLabel)
		assert.Nil(t, u.OnlineStatusID)
		assert.Equal(t, "OFFLINE", u.OnlineDisplay())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`FROM users u`).
			WithArgs("ghost", "ghost", "ghost").
			WillReturnRows(sqlmock.NewRows(userColumns))

		u, err := repo.FindByIdentifier(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID_OnlineStatus(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow(9, "Bob", "bob", "bob@example.com", "hash", 1, 3, 5, now, now, "Admin", "Approved", "ONLINE")
	mock.ExpectQuery(`WHERE u.id = \?`).WithArgs(uint64(9)).WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, u.OnlineStatusID)
	assert.Equal(t, uint16(5), *u.OnlineStatusID)
	assert.Equal(t, "ONLINE", u.OnlineDisplay())
}

func TestUserRepo_Create(t *testing.T) {
	offline := uint16(6)

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMock(t)
		u := &model.User{Name: "Alice", Username: " alice ", Email: "Alice@Example.com",
			PasswordHash: "hash", RoleID: 6, StatusID: 1, OnlineStatusID: &offline}
		mock.ExpectExec("INSERT INTO users").
			WithArgs("Alice", "alice", "alice@example.com", "hash", uint8(6), uint16(1), uint16(6)).
			WillReturnResult(sqlmock.NewResult(42, 1))

		require.NoError(t, repo.Create(context.Background(), u))
		assert.Equal(t, uint64(42), u.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'users.uq_users_username'"})

		err := repo.Create(context.Background(), &model.User{Username: "alice", Email: "a@x.io"})
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.io' for key 'users.uq_users_email'"})

		err := repo.Create(context.Background(), &model.User{Username: "alice", Email: "a@x.io"})
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestUserRepo_SetOnlineStatus(t *testing.T) {
	repo, mock := newMock(t)
	offline := uint16(6)

	mock.ExpectExec(`UPDATE users SET online_status_id = \? WHERE id = \?`).
		WithArgs(uint16(6), uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET online_status_id = \? WHERE id = \?`).
		WithArgs(nil, uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetOnlineStatus(context.Background(), 3, &offline))
	require.NoError(t, repo.SetOnlineStatus(context.Background(), 3, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CountByStatus(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM statuses s LEFT JOIN users u`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).
			AddRow("Pending", 2).AddRow("Blocked", 0).AddRow("Approved", 5))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Pending": 2, "Blocked": 0, "Approved": 5}, counts)
}

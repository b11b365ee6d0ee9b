package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountCols = []string{"id", "email", "password_hash", "salt", "email_confirmed_at", "created_at", "updated_at"}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		errIs   error
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO accounts`).
					WithArgs("ana@example.com", "hash", "salt", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc-1"))
			},
			wantID: "acc-1",
		},
		{
			name: "unique violation returns ErrDuplicateEmail",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO accounts`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateEmail,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO accounts`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			a := domain.NewAccount("ana@example.com", "hash", "salt", now)
			err = NewAccountRepository(db).Create(ctx, a)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, a.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("confirmed account", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows(accountCols).AddRow("acc-1", "ana@example.com", "hash", "salt", now, now, now))

		a, err := NewAccountRepository(db).GetByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, "acc-1", a.ID)
		require.NotNil(t, a.EmailConfirmedAt)
		assert.True(t, a.Identity().EmailConfirmed)
	})

	t.Run("unconfirmed account", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE id = \$1`).
			WithArgs("acc-1").
			WillReturnRows(sqlmock.NewRows(accountCols).AddRow("acc-1", "ana@example.com", "hash", "salt", nil, now, now))

		a, err := NewAccountRepository(db).GetByID(ctx, "acc-1")
		require.NoError(t, err)
		assert.Nil(t, a.EmailConfirmedAt)
		assert.False(t, a.Identity().EmailConfirmed)
	})

	t.Run("missing account", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM accounts`).WillReturnError(sql.ErrNoRows)

		_, err = NewAccountRepository(db).GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAccountRepository_ConfirmEmail(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "confirmed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE accounts\s+SET email_confirmed_at = COALESCE`).
					WithArgs("ana@example.com", at).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "unknown email",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			errIs: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE accounts`).WillReturnError(sql.ErrConnDone)
			},
			errIs: sql.ErrConnDone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewAccountRepository(db).ConfirmEmail(ctx, "ana@example.com", at)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventboard/internal/domain"
)

type accountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) domain.AccountRepository {
	return &accountRepository{DB: db}
}

const accountColumns = `id, email, password_hash, salt, email_confirmed_at, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.Email, a.PasswordHash, a.Salt, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.DB.QueryRowContext(ctx, query, email))
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.DB.QueryRowContext(ctx, query, id))
}

// ConfirmEmail keeps the first confirmation time when called twice.
func (r *accountRepository) ConfirmEmail(ctx context.Context, email string, at time.Time) error {
	query := `
		UPDATE accounts
		SET email_confirmed_at = COALESCE(email_confirmed_at, $2), updated_at = $2
		WHERE email = $1
	`
	result, err := r.DB.ExecContext(ctx, query, email, at)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	a := &domain.Account{}
	var confirmed sql.NullTime
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Salt, &confirmed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if confirmed.Valid {
		a.EmailConfirmedAt = &confirmed.Time
	}
	return a, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventboard/internal/domain"
)

type verificationCodeRepository struct {
	DB *sql.DB
}

// NewVerificationCodeRepository returns a domain.VerificationCodeRepository implemented with Postgres.
func NewVerificationCodeRepository(db *sql.DB) domain.VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

func (r *verificationCodeRepository) Create(ctx context.Context, email, purpose, codeHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO verification_codes (email, purpose, code_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, query, email, purpose, codeHash, expiresAt)
	return err
}

// Consume deletes the code in the same statement that finds it, so a code is
// accepted at most once.
func (r *verificationCodeRepository) Consume(ctx context.Context, purpose, codeHash string) (string, error) {
	query := `
		DELETE FROM verification_codes
		WHERE id = (
			SELECT id FROM verification_codes
			WHERE purpose = $1 AND code_hash = $2 AND expires_at > NOW()
			LIMIT 1
		)
		RETURNING email
	`
	var email string
	err := r.DB.QueryRowContext(ctx, query, purpose, codeHash).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return email, nil
}

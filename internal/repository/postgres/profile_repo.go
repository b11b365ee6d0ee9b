package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventboard/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

const profileColumns = `id, username, full_name, email, role, created_at`

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, username, full_name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, p.ID, p.Username, p.FullName, p.Email, string(p.Role), p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.DB.QueryRowContext(ctx, query, id))
}

func (r *profileRepository) List(ctx context.Context, filter domain.ProfileFilter) ([]*domain.Profile, error) {
	var where []string
	var args []interface{}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Username != "" {
		args = append(args, filter.Username)
		where = append(where, fmt.Sprintf("username = $%d", len(args)))
	}
	query := `SELECT ` + profileColumns + ` FROM profiles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	profiles := make([]*domain.Profile, 0)
	for rows.Next() {
		p := &domain.Profile{}
		var role string
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.Email, &role, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Role = domain.Role(role)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Update(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	var setClauses []string
	var args []interface{}
	n := 1
	if patch.Username != nil {
		setClauses = append(setClauses, fmt.Sprintf("username = $%d", n))
		args = append(args, *patch.Username)
		n++
	}
	if patch.FullName != nil {
		setClauses = append(setClauses, fmt.Sprintf("full_name = $%d", n))
		args = append(args, *patch.FullName)
		n++
	}
	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE profiles SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, profileColumns)
	return scanProfile(r.DB.QueryRowContext(ctx, query, args...))
}

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	p := &domain.Profile{}
	var role string
	if err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Email, &role, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Role = domain.Role(role)
	return p, nil
}

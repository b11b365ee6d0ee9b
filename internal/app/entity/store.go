// Package entity gives typed, validated access to the events and profiles tables.
package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventboard/internal/app/backend"

	"github.com/go-playground/validator/v10"
)

// Table is the single-table transport. *backend.Table implements it.
type Table interface {
	Select(ctx context.Context, q backend.Query, dest any) error
	Insert(ctx context.Context, record, dest any) error
	Update(ctx context.Context, id string, patch, dest any) error
	Delete(ctx context.Context, id string) error
}

// store decodes rows of T and rejects any that fail their schema.
type store[T any] struct {
	table    Table
	validate *validator.Validate
}

func newStore[T any](table Table, v *validator.Validate) store[T] {
	return store[T]{table: table, validate: v}
}

func (s store[T]) list(ctx context.Context, q backend.Query) ([]T, error) {
	var rows []T
	if err := s.table.Select(ctx, q, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if err := s.check(&rows[i]); err != nil {
			return nil, err
		}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// get returns nil, nil when the row does not exist. An empty id matches no row.
func (s store[T]) get(ctx context.Context, id string) (*T, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var row T
	if err := s.table.Select(ctx, backend.Query{ID: id}, &row); err != nil {
		var accessErr *backend.AccessError
		if errors.As(err, &accessErr) && accessErr.Kind == backend.AccessNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := s.check(&row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (s store[T]) insert(ctx context.Context, record any) (*T, error) {
	var row T
	if err := s.table.Insert(ctx, record, &row); err != nil {
		return nil, err
	}
	if err := s.check(&row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (s store[T]) update(ctx context.Context, id string, patch any) (*T, error) {
	var row T
	if err := s.table.Update(ctx, id, patch, &row); err != nil {
		return nil, err
	}
	if err := s.check(&row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (s store[T]) remove(ctx context.Context, id string) error {
	return s.table.Delete(ctx, id)
}

func (s store[T]) check(row *T) error {
	if err := s.validate.Struct(row); err != nil {
		return &backend.AccessError{Kind: backend.AccessMalformed, Message: describe(err), Err: err}
	}
	return nil
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return "malformed record: " + strings.Join(parts, ", ")
}

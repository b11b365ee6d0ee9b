package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// TokenSource supplies the bearer token for table calls. An empty token
// sends the request anonymously.
type TokenSource interface {
	AccessToken() string
}

// Filter is an equality condition column = value.
type Filter struct {
	Column string
	Value  string
}

// Query describes a select. A non-empty ID selects a single row and ignores
// the other fields.
type Query struct {
	Eq    []Filter
	Order string
	ID    string
}

// Table runs single-table operations against one API resource.
type Table struct {
	client *Client
	name   string
	tokens TokenSource
}

// Table returns the resource named name, authorized by tokens.
func (c *Client) Table(name string, tokens TokenSource) *Table {
	return &Table{client: c, name: name, tokens: tokens}
}

// Name returns the resource name.
func (t *Table) Name() string { return t.name }

func (t *Table) token() string {
	if t.tokens == nil {
		return ""
	}
	return t.tokens.AccessToken()
}

// Select decodes the matching rows into dest: a slice pointer for list
// queries, a struct pointer when q.ID is set.
func (t *Table) Select(ctx context.Context, q Query, dest any) error {
	path := "/" + t.name
	var query url.Values
	if q.ID != "" {
		path += "/" + url.PathEscape(q.ID)
	} else {
		query = url.Values{}
		for _, f := range q.Eq {
			query.Set(f.Column, f.Value)
		}
		if q.Order != "" {
			query.Set("order", q.Order)
		}
	}
	data, err := t.client.do(ctx, http.MethodGet, path, query, t.token(), nil)
	if err != nil {
		return accessErrorFrom(err)
	}
	return decodeRows(data, dest)
}

// Insert creates record and decodes the stored row into dest.
func (t *Table) Insert(ctx context.Context, record, dest any) error {
	data, err := t.client.do(ctx, http.MethodPost, "/"+t.name, nil, t.token(), record)
	if err != nil {
		return accessErrorFrom(err)
	}
	return decodeRows(data, dest)
}

// Update applies patch to the row with the given id and decodes the result into dest.
func (t *Table) Update(ctx context.Context, id string, patch, dest any) error {
	data, err := t.client.do(ctx, http.MethodPatch, "/"+t.name+"/"+url.PathEscape(id), nil, t.token(), patch)
	if err != nil {
		return accessErrorFrom(err)
	}
	return decodeRows(data, dest)
}

// Delete removes the row with the given id.
func (t *Table) Delete(ctx context.Context, id string) error {
	_, err := t.client.do(ctx, http.MethodDelete, "/"+t.name+"/"+url.PathEscape(id), nil, t.token(), nil)
	return accessErrorFrom(err)
}

func decodeRows(data json.RawMessage, dest any) error {
	if dest == nil {
		return nil
	}
	if len(data) == 0 || string(data) == "null" {
		return &AccessError{Kind: AccessMalformed, Message: "response has no data"}
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return &AccessError{Kind: AccessMalformed, Err: fmt.Errorf("failed to decode rows: %w", err)}
	}
	return nil
}

package entity

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"testing"
	"time"

	"eventboard/internal/app/backend"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTable is an in-memory Table that stores rows as JSON objects, the way
// the API would return them.
type memTable struct {
	rows      map[string]map[string]any
	order     []string
	lastQuery backend.Query
	err       error
	raw       string
}

func newMemTable() *memTable {
	return &memTable{rows: make(map[string]map[string]any)}
}

func reencode(src, dest any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func (m *memTable) Select(ctx context.Context, q backend.Query, dest any) error {
	m.lastQuery = q
	if m.err != nil {
		return m.err
	}
	if m.raw != "" {
		return json.Unmarshal([]byte(m.raw), dest)
	}
	if q.ID != "" {
		row, ok := m.rows[q.ID]
		if !ok {
			return &backend.AccessError{Kind: backend.AccessNotFound, Status: http.StatusNotFound, Message: "event not found"}
		}
		return reencode(row, dest)
	}
	out := make([]map[string]any, 0)
	for _, id := range m.order {
		row, ok := m.rows[id]
		if !ok {
			continue
		}
		match := true
		for _, f := range q.Eq {
			if row[f.Column] != f.Value {
				match = false
			}
		}
		if match {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i]["date"].(string)
		b, _ := out[j]["date"].(string)
		return a < b
	})
	return reencode(out, dest)
}

func (m *memTable) Insert(ctx context.Context, record, dest any) error {
	if m.err != nil {
		return m.err
	}
	row := map[string]any{}
	if err := reencode(record, &row); err != nil {
		return err
	}
	if id, _ := row["id"].(string); id == "" {
		row["id"] = uuid.NewString()
	}
	row["created_at"] = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	id := row["id"].(string)
	m.rows[id] = row
	m.order = append(m.order, id)
	return reencode(row, dest)
}

func (m *memTable) Update(ctx context.Context, id string, patch, dest any) error {
	if m.err != nil {
		return m.err
	}
	row, ok := m.rows[id]
	if !ok {
		return &backend.AccessError{Kind: backend.AccessNotFound, Status: http.StatusNotFound}
	}
	if err := reencode(patch, &row); err != nil {
		return err
	}
	return reencode(row, dest)
}

func (m *memTable) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return &backend.AccessError{Kind: backend.AccessNotFound, Status: http.StatusNotFound}
	}
	delete(m.rows, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

var organizerID = "0e8b7c6d-5a4f-4e3d-8c2b-1a0f9e8d7c6b"

func concert() EventDraft {
	return EventDraft{
		Title:       "Concert",
		Description: "Live show",
		Date:        time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC),
		Location:    "Park",
		Price:       ptr(0.0),
		Capacity:    ptr(100),
		Category:    "music",
		OrganizerID: organizerID,
	}
}

func TestEvents_InsertThenGetByIDRoundTrips(t *testing.T) {
	ctx := context.Background()
	events := NewEvents(newMemTable())

	drafts := []EventDraft{
		concert(),
		{Title: "Talk", Date: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), OrganizerID: organizerID},
		{Title: "Gala", Date: time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC), Price: ptr(42.5), ImageURL: ptr("https://img.test/gala.png"), OrganizerID: organizerID},
	}
	for _, d := range drafts {
		inserted, err := events.Insert(ctx, d)
		require.NoError(t, err)
		require.NotEmpty(t, inserted.ID)

		got, err := events.GetByID(ctx, inserted.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, *inserted, *got)
		assert.Equal(t, d.Title, got.Title)
		assert.True(t, d.Date.Equal(got.Date))
	}
}

func TestEvents_RemoveThenGetByIDYieldsNothing(t *testing.T) {
	ctx := context.Background()
	events := NewEvents(newMemTable())

	inserted, err := events.Insert(ctx, concert())
	require.NoError(t, err)
	require.NoError(t, events.Remove(ctx, inserted.ID))

	got, err := events.GetByID(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetByID_EmptyIDMatchesNothing(t *testing.T) {
	ctx := context.Background()
	table := newMemTable()
	events := NewEvents(table)
	_, err := events.Insert(ctx, concert())
	require.NoError(t, err)

	for _, id := range []string{"", "  "} {
		event, err := events.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, event)

		profile, err := NewProfiles(table).GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, profile)
	}
	assert.Equal(t, backend.Query{}, table.lastQuery)
}

func TestEvents_FreeAndCapacity(t *testing.T) {
	events := NewEvents(newMemTable())
	e, err := events.Insert(context.Background(), concert())
	require.NoError(t, err)
	require.NotNil(t, e.Price)
	assert.Equal(t, 0.0, *e.Price)
	assert.True(t, e.IsFree())
	assert.Equal(t, 100, *e.Capacity)
}

func TestEvents_List(t *testing.T) {
	ctx := context.Background()
	table := newMemTable()
	events := NewEvents(table)

	late := concert()
	late.Date = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	other := concert()
	other.OrganizerID = "f1e2d3c4-b5a6-4978-8a9b-0c1d2e3f4a5b"
	other.Category = "sport"
	for _, d := range []EventDraft{late, concert(), other} {
		_, err := events.Insert(ctx, d)
		require.NoError(t, err)
	}

	all, err := events.List(ctx, EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, DefaultEventOrder, table.lastQuery.Order)
	assert.True(t, all[0].Date.Before(all[2].Date) || all[0].Date.Equal(all[2].Date))

	mine, err := events.ListByOrganizer(ctx, organizerID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.Equal(t, []backend.Filter{{Column: "organizer_id", Value: organizerID}}, table.lastQuery.Eq)

	sport, err := events.List(ctx, EventFilter{Category: "sport", Order: "created_at.desc"})
	require.NoError(t, err)
	assert.Len(t, sport, 1)
	assert.Equal(t, "created_at.desc", table.lastQuery.Order)

	table.rows = map[string]map[string]any{}
	none, err := events.List(ctx, EventFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestEvents_Update(t *testing.T) {
	ctx := context.Background()
	events := NewEvents(newMemTable())
	e, err := events.Insert(ctx, concert())
	require.NoError(t, err)

	updated, err := events.Update(ctx, e.ID, EventPatch{Title: ptr("Encore"), Capacity: ptr(120)})
	require.NoError(t, err)
	assert.Equal(t, "Encore", updated.Title)
	assert.Equal(t, 120, *updated.Capacity)
	assert.Equal(t, e.OrganizerID, updated.OrganizerID)

	_, err = events.Update(ctx, uuid.NewString(), EventPatch{Title: ptr("x")})
	var accessErr *backend.AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, backend.AccessNotFound, accessErr.Kind)
}

func TestEvents_RejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{name: "negative price", raw: `[{"id":"5d1f4c3a-8a63-4f5e-9b2a-7f3c2d1e0a9b","title":"x","date":"2025-01-01T00:00:00Z","price":-1,"organizer_id":"o"}]`, wantMsg: "price: gte=0"},
		{name: "zero capacity", raw: `[{"id":"5d1f4c3a-8a63-4f5e-9b2a-7f3c2d1e0a9b","title":"x","date":"2025-01-01T00:00:00Z","capacity":0,"organizer_id":"o"}]`, wantMsg: "capacity: gt=0"},
		{name: "missing title", raw: `[{"id":"5d1f4c3a-8a63-4f5e-9b2a-7f3c2d1e0a9b","date":"2025-01-01T00:00:00Z","organizer_id":"o"}]`, wantMsg: "title: required"},
		{name: "id not a uuid", raw: `[{"id":"42","title":"x","date":"2025-01-01T00:00:00Z","organizer_id":"o"}]`, wantMsg: "id: uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newMemTable()
			table.raw = tt.raw
			_, err := NewEvents(table).List(context.Background(), EventFilter{})

			var accessErr *backend.AccessError
			require.ErrorAs(t, err, &accessErr)
			assert.Equal(t, backend.AccessMalformed, accessErr.Kind)
			assert.Contains(t, accessErr.Message, tt.wantMsg)
		})
	}
}

func TestEvents_PassesBackendErrorsThrough(t *testing.T) {
	backendErr := &backend.AccessError{Kind: backend.AccessPermission, Status: http.StatusForbidden, Message: "only the organizer can modify this event"}
	table := newMemTable()
	table.err = backendErr

	err := NewEvents(table).Remove(context.Background(), "id")
	assert.Same(t, backendErr, err)

	_, err = NewEvents(table).GetByID(context.Background(), "id")
	assert.Same(t, backendErr, err)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	profiles := NewProfiles(newMemTable())
	id := uuid.NewString()

	inserted, err := profiles.Insert(ctx, ProfileDraft{ID: id, Username: "ana", FullName: "Ana", Email: "ana@example.com", Role: RoleOrganizer})
	require.NoError(t, err)
	got, err := profiles.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, inserted, got)
	assert.Equal(t, RoleOrganizer, got.Role)

	missing, err := profiles.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := profiles.Update(ctx, id, ProfilePatch{FullName: ptr("Ana Lima")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.FullName)
	assert.Equal(t, RoleOrganizer, updated.Role)

	organizers, err := profiles.List(ctx, ProfileFilter{Role: RoleOrganizer})
	require.NoError(t, err)
	assert.Len(t, organizers, 1)

	var accessErr *backend.AccessError
	require.ErrorAs(t, profiles.Remove(ctx, id), &accessErr)
	assert.Equal(t, backend.AccessPermission, accessErr.Kind)
	still, err := profiles.GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestProfiles_RejectsUnknownRole(t *testing.T) {
	table := newMemTable()
	table.raw = `{"id":"u1","username":"ana","role":"admin"}`
	_, err := NewProfiles(table).GetByID(context.Background(), "u1")

	var accessErr *backend.AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, backend.AccessMalformed, accessErr.Kind)
	assert.Contains(t, accessErr.Message, "role: oneof=standard organizer")
}

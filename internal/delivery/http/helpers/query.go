package helpers

import (
	"net/http"
	"strings"

	"eventboard/internal/domain"

	"github.com/google/uuid"
)

// Event list query parameters.
const (
	QueryOrganizerID = "organizer_id"
	QueryCategory    = "category"
	QueryOrder       = "order"
	QueryRole        = "role"
	QueryUsername    = "username"
)

// ParseEventFilter reads organizer_id, category and order from the query string.
// A missing order falls back to domain.DefaultEventOrder; a malformed one is an error.
func ParseEventFilter(r *http.Request) (domain.EventFilter, error) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		OrganizerID: strings.TrimSpace(q.Get(QueryOrganizerID)),
		Category:    strings.TrimSpace(q.Get(QueryCategory)),
	}
	if filter.OrganizerID != "" {
		if _, err := uuid.Parse(filter.OrganizerID); err != nil {
			return domain.EventFilter{}, domain.ErrInvalidInput
		}
	}
	order, err := domain.ParseEventOrder(q.Get(QueryOrder))
	if err != nil {
		return domain.EventFilter{}, err
	}
	filter.Order = order
	return filter, nil
}

// ParseProfileFilter reads role and username from the query string.
func ParseProfileFilter(r *http.Request) (domain.ProfileFilter, error) {
	q := r.URL.Query()
	filter := domain.ProfileFilter{Username: strings.TrimSpace(q.Get(QueryUsername))}
	if raw := q.Get(QueryRole); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return domain.ProfileFilter{}, domain.ErrInvalidInput
		}
		filter.Role = role
	}
	return filter, nil
}

// PathUUID returns the named path value if it is a valid UUID. Otherwise it
// writes a 400 error and returns false.
func PathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	if _, err := uuid.Parse(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a UUID")
		return "", false
	}
	return v, true
}

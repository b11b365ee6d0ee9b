package entity

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Event is a row of the events table as the app sees it.
type Event struct {
	ID          string    `json:"id" validate:"required,uuid"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location"`
	Price       *float64  `json:"price" validate:"omitnil,gte=0"`
	Capacity    *int      `json:"capacity" validate:"omitnil,gt=0"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"image_url"`
	OrganizerID string    `json:"organizer_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsFree reports whether the event has no price or a zero price.
func (e *Event) IsFree() bool {
	return e.Price == nil || *e.Price == 0
}

// EventDraft is the body of an insert. The server assigns id and created_at.
type EventDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Price       *float64  `json:"price"`
	Capacity    *int      `json:"capacity"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"image_url,omitempty"`
	OrganizerID string    `json:"organizer_id"`
}

// EventPatch changes only its non-nil fields. The organizer cannot change.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	Category    *string    `json:"category,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

// Role is the profile classification stored at registration.
type Role string

const (
	RoleStandard  Role = "standard"
	RoleOrganizer Role = "organizer"
)

// Profile is a row of the profiles table.
type Profile struct {
	ID        string    `json:"id" validate:"required"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role" validate:"required,oneof=standard organizer"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileDraft is the body of a profile insert. ID must be the caller's identity.
type ProfileDraft struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// ProfilePatch changes username and full name only; the role is write-once.
type ProfilePatch struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

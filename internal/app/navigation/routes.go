package navigation

import "strings"

// Named routes. Routes with an id are built with EventRoute and EditEventRoute.
const (
	RouteHome            = "home"
	RouteExplore         = "explore"
	RouteLogin           = "login"
	RouteRegister        = "register"
	RouteVerifyEmail     = "verify-email"
	RouteOrganizer       = "organizer"
	RouteOrganizerEvents = "organizer/events"
	RouteCreateEvent     = "organizer/events/create"
	RouteProfile         = "profile"
)

// EventRoute is the detail route of one event.
func EventRoute(id string) string { return "event/" + id }

// EditEventRoute is the organizer edit route of one event.
func EditEventRoute(id string) string { return "organizer/events/" + id + "/edit" }

// Tab is a top-level navigation entry.
type Tab string

const (
	TabHome      Tab = "home"
	TabExplore   Tab = "explore"
	TabLogin     Tab = "login"
	TabProfile   Tab = "profile"
	TabOrganizer Tab = "organizer"
)

// Route returns the route a tab opens.
func (t Tab) Route() string { return string(t) }

// TabsFor lists the mounted tabs in s. Nothing is mounted while resolving.
func TabsFor(s State) []Tab {
	switch s {
	case Unauthenticated:
		return []Tab{TabHome, TabExplore, TabLogin}
	case Standard:
		return []Tab{TabHome, TabExplore, TabProfile}
	case Organizer:
		return []Tab{TabHome, TabExplore, TabOrganizer}
	default:
		return nil
	}
}

// Allowed reports whether route is reachable in s.
func Allowed(s State, route string) bool {
	if s == Resolving {
		return false
	}
	parts := strings.Split(strings.Trim(route, "/"), "/")
	switch {
	case route == RouteHome, route == RouteExplore, route == RouteVerifyEmail:
		return true
	case len(parts) == 2 && parts[0] == "event" && parts[1] != "":
		return true
	case route == RouteLogin, route == RouteRegister:
		return s == Unauthenticated
	case route == RouteProfile:
		return s == Standard || s == Organizer
	case parts[0] == RouteOrganizer:
		return s == Organizer && organizerRoute(parts)
	default:
		return false
	}
}

func organizerRoute(parts []string) bool {
	switch len(parts) {
	case 1:
		return true
	case 2:
		return parts[1] == "events"
	case 3:
		return parts[1] == "events" && parts[2] == "create"
	case 4:
		return parts[1] == "events" && parts[2] != "" && parts[3] == "edit"
	default:
		return false
	}
}

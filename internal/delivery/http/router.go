package http

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth    *controllers.AuthController
	Event   *controllers.EventController
	Profile *controllers.ProfileController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/signin", c.Auth.SignIn)
	mux.HandleFunc("POST /auth/refresh", c.Auth.Refresh)
	mux.HandleFunc("POST /auth/resend", c.Auth.Resend)
	mux.HandleFunc("GET /auth/verify", c.Auth.Verify)
	mux.HandleFunc("POST /auth/signout", auth(c.Auth.SignOut))
	mux.HandleFunc("GET /auth/user", auth(c.Auth.CurrentUser))

	// Events
	mux.HandleFunc("GET /events", c.Event.ListEvents)
	mux.HandleFunc("GET /events/{id}", c.Event.GetEvent)
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("PATCH /events/{id}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", auth(c.Event.DeleteEvent))

	// Profiles
	mux.HandleFunc("GET /profiles", auth(c.Profile.ListProfiles))
	mux.HandleFunc("GET /profiles/{id}", auth(c.Profile.GetProfile))
	mux.HandleFunc("POST /profiles", auth(c.Profile.CreateProfile))
	mux.HandleFunc("PATCH /profiles/{id}", auth(c.Profile.UpdateProfile))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

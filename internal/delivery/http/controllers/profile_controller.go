package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// CreateProfileRequest is the request body for POST /profiles. id, when
// present, must equal the caller; email is taken from the account.
type CreateProfileRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Validate implements Validator.
func (c CreateProfileRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Username) == "" {
		errs = append(errs, "username is required")
	}
	if _, ok := domain.ParseRole(c.Role); !ok {
		errs = append(errs, "role must be \"standard\" or \"organizer\"")
	}
	return errs
}

// UpdateProfileRequest is the request body for PATCH /profiles/{id}. The role cannot be changed.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	var errs []string
	if u.Username == nil && u.FullName == nil {
		errs = append(errs, "at least one field is required")
	}
	if u.Username != nil && strings.TrimSpace(*u.Username) == "" {
		errs = append(errs, "username cannot be empty")
	}
	return errs
}

// ProfileResponse is the success envelope for endpoints returning a profile.
type ProfileResponse struct {
	Data  *domain.Profile `json:"data"`
	Error *h.APIError     `json:"error"`
}

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{
		Logger:  logger,
		Service: svc,
	}
}

// ProfileListResponse is the success envelope for GET /profiles.
type ProfileListResponse struct {
	Data  []*domain.Profile `json:"data"`
	Error *h.APIError       `json:"error"`
}

// ListProfiles godoc
// @Summary List profiles
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param role query string false "standard or organizer"
// @Param username query string false "Exact username"
// @Success 200 {object} controllers.ProfileListResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /profiles [get]
func (c *ProfileController) ListProfiles(w http.ResponseWriter, r *http.Request) {
	filter, err := h.ParseProfileFilter(r)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "role must be \"standard\" or \"organizer\"")
		return
	}
	profiles, err := c.Service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "profiles")
		return
	}
	if profiles == nil {
		profiles = []*domain.Profile{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, profiles)
}

// GetProfile godoc
// @Summary Get a profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Identity ID (UUID)"
// @Success 200 {object} controllers.ProfileResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /profiles/{id} [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	profile, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "profile")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, profile)
}

// CreateProfile godoc
// @Summary Create the caller's profile
// @Description The role is fixed at creation: "standard" (default) or "organizer".
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body CreateProfileRequest true "Profile data"
// @Success 201 {object} controllers.ProfileResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /profiles [post]
func (c *ProfileController) CreateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.ID != "" && req.ID != accountID {
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "id must be the caller")
		return
	}
	profile := &domain.Profile{
		Username: req.Username,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
	}
	if err := c.Service.Create(r.Context(), accountID, profile); err != nil {
		writeServiceError(w, r, c.Logger, err, "profile")
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, profile)
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Identity ID (UUID)"
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} controllers.ProfileResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /profiles/{id} [patch]
func (c *ProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Service.Update(r.Context(), accountID, id, domain.ProfilePatch{Username: req.Username, FullName: req.FullName})
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "profile")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, profile)
}

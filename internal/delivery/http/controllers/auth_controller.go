package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// CredentialsRequest is the request body for POST /auth/signup and POST /auth/signin.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (c CredentialsRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, "email is required")
	}
	if c.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// RefreshRequest is the request body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate implements Validator.
func (rr RefreshRequest) Validate() []string {
	if rr.RefreshToken == "" {
		return []string{"refresh_token is required"}
	}
	return nil
}

// ResendRequest is the request body for POST /auth/resend.
type ResendRequest struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (rr ResendRequest) Validate() []string {
	var errs []string
	if rr.Type == "" {
		errs = append(errs, "type is required")
	}
	if strings.TrimSpace(rr.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// AuthSessionResponse is the success envelope for endpoints returning a session.
type AuthSessionResponse struct {
	Data  *domain.AuthSession `json:"data"`
	Error *h.APIError         `json:"error"`
}

// IdentityResponse is the success envelope for endpoints returning an identity.
type IdentityResponse struct {
	Data  *domain.Identity `json:"data"`
	Error *h.APIError      `json:"error"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// SignUp godoc
// @Summary Sign up
// @Description Create an account with email and password and send a confirmation email. Returns a session for the new identity.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body CredentialsRequest true "Sign-up credentials"
// @Success 201 {object} controllers.AuthSessionResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "account")
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, session)
}

// SignIn godoc
// @Summary Sign in
// @Description Authenticate with email and password.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body CredentialsRequest true "Sign-in credentials"
// @Success 200 {object} controllers.AuthSessionResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: email_not_confirmed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signin [post]
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "account")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, session)
}

// Refresh godoc
// @Summary Refresh a session
// @Description Exchange a refresh token for a new session. The presented refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} controllers.AuthSessionResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/refresh [post]
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "session")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, session)
}

// SignOut godoc
// @Summary Sign out
// @Description Revoke every refresh token of the authenticated identity.
// @Tags auth
// @Security BearerAuth
// @Success 204 "signed out"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/signout [post]
func (c *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.SignOut(r.Context(), accountID); err != nil {
		writeServiceError(w, r, c.Logger, err, "session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resend godoc
// @Summary Resend a verification email
// @Description Send a new confirmation email. Always accepted for well-formed requests, whether or not the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ResendRequest true "Verification type and email"
// @Success 202 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /auth/resend [post]
func (c *AuthController) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.ResendVerification(r.Context(), req.Type, req.Email); err != nil {
		writeServiceError(w, r, c.Logger, err, "account")
		return
	}
	h.WriteJSONSuccess(w, http.StatusAccepted, nil)
}

// Verify godoc
// @Summary Confirm an email address
// @Description Consume the token from a confirmation email.
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} controllers.IdentityResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/verify [get]
func (c *AuthController) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "token is required")
		return
	}
	identity, err := c.Service.VerifyEmail(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "account")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, identity)
}

// CurrentUser godoc
// @Summary Get the current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.IdentityResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /auth/user [get]
func (c *AuthController) CurrentUser(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	identity, err := c.Service.GetIdentity(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "account")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, identity)
}

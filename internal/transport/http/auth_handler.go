package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"crpdash/internal/auth"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/infrastructure"
	"crpdash/internal/middleware"
)

// LoginFailedMessage is shown for every rejected login
const LoginFailedMessage = "Invalid username or password"

// CookieOptions controls the session cookie
type CookieOptions struct {
	Name   string
	Secure bool
}

// LoginForm is the posted login form
type LoginForm struct {
	Username string `form:"username" validate:"required,max=128"`
	Password string `form:"password" validate:"required,max=72"`
	Next     string `form:"next" validate:"max=2048"`
}

// AuthHandler serves the login gate
type AuthHandler struct {
	authenticator auth.Authenticator
	sessions      SessionManager
	pages         *Pages
	cookie        CookieOptions
	validator     *middleware.Validator
	metrics       *infrastructure.BusinessMetrics
	errorHandler  *apierrors.ErrorHandler
	logger        *slog.Logger
}

// NewAuthHandler creates the login handler
func NewAuthHandler(authenticator auth.Authenticator, sessions SessionManager, pages *Pages, cookie CookieOptions, validator *middleware.Validator, metrics *infrastructure.BusinessMetrics, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		sessions:      sessions,
		pages:         pages,
		cookie:        cookie,
		validator:     validator,
		metrics:       metrics,
		errorHandler:  errorHandler,
		logger:        logger.With(slog.String("component", "auth_handler")),
	}
}

// ShowLogin handles GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	page := LoginPage{Next: safeNext(r.URL.Query().Get("next"))}
	if err := h.pages.RenderLogin(w, http.StatusOK, page); err != nil {
		h.errorHandler.HandleError(w, r, err)
	}
}

// Login handles POST /login. Any failure re-renders the form with the same
// message and leaves the gate closed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return
	}
	form := LoginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
		Next:     r.PostForm.Get("next"),
	}

	err := h.validator.Struct(form)
	if err == nil {
		err = h.authenticator.Authenticate(ctx, form.Username, form.Password)
	}
	if err != nil {
		infrastructure.RecordLogin(ctx, h.metrics, false)
		h.logger.WarnContext(ctx, "login rejected",
			slog.String("username", form.Username),
			slog.String("reason", loginFailureReason(err)))

		page := LoginPage{Error: LoginFailedMessage, Username: form.Username, Next: safeNext(form.Next)}
		if rerr := h.pages.RenderLogin(w, http.StatusUnauthorized, page); rerr != nil {
			h.errorHandler.HandleError(w, r, rerr)
		}
		return
	}

	session, err := h.sessions.Create(ctx, form.Username)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewAuthError("failed to create session", err))
		return
	}
	infrastructure.RecordLogin(ctx, h.metrics, true)
	h.logger.InfoContext(ctx, "login succeeded", slog.String("username", form.Username))

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, safeNext(form.Next), http.StatusSeeOther)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie.Name); err == nil && c.Value != "" {
		h.sessions.Revoke(r.Context(), c.Value)
	}
	if s, ok := middleware.SessionFromContext(r.Context()); ok {
		h.logger.InfoContext(r.Context(), "logout", slog.String("username", s.Username))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func loginFailureReason(err error) string {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return "invalid_credentials"
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return "invalid_form"
	}
	return "error"
}

// safeNext keeps post-login redirects on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/render"

	"crpdash/internal/auth"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/infrastructure"
)

// SessionLookup resolves a session token. *auth.SessionStore satisfies it.
type SessionLookup interface {
	Get(ctx context.Context, token string) (auth.Session, error)
}

type sessionContextKey struct{}

// SessionFromContext returns the session attached by SessionGate
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(auth.Session)
	return s, ok
}

// WithSession attaches a session to ctx
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionGate rejects requests without a live session cookie. Browser
// requests are redirected to the login page; API requests get a 401.
type SessionGate struct {
	sessions   SessionLookup
	cookieName string
	loginPath  string
	logger     *slog.Logger
}

// NewSessionGate creates the gate
func NewSessionGate(sessions SessionLookup, cookieName, loginPath string, logger *slog.Logger) *SessionGate {
	return &SessionGate{
		sessions:   sessions,
		cookieName: cookieName,
		loginPath:  loginPath,
		logger:     logger.With(slog.String("component", "session_gate")),
	}
}

// Handler implements the gate middleware
func (g *SessionGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cookie, err := r.Cookie(g.cookieName)
		if err != nil || cookie.Value == "" {
			g.reject(w, r, "missing")
			return
		}

		session, err := g.sessions.Get(ctx, cookie.Value)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrSessionExpired) {
				reason = "expired"
			}
			g.reject(w, r, reason)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, session)))
	})
}

func (g *SessionGate) reject(w http.ResponseWriter, r *http.Request, reason string) {
	g.logger.DebugContext(r.Context(), "session rejected",
		slog.String("path", r.URL.Path),
		slog.String("reason", reason))

	if isAPIRequest(r) {
		problem := apierrors.NewProblemDetails(
			http.StatusUnauthorized,
			apierrors.TypeUnauthorized,
			"Unauthorized",
			"Login required to access this resource",
			r.URL.Path,
		).WithExtension("trace_id", infrastructure.GetTraceID(r.Context())).
			WithExtension("error_code", "UNAUTHORIZED").
			WithExtension("login_url", g.loginPath)
		_ = render.Render(w, r, problem)
		return
	}

	target := g.loginPath
	if r.Method == http.MethodGet && r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// isAPIRequest checks if the request expects a JSON response
func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

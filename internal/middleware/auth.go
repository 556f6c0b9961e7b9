package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/session"
)

const (
	LoginPath       = "/login"
	VerifyEmailPath = "/verify-email"
	DashboardPath   = "/dashboard"
)

// SessionResolver looks up the session behind a cookie value. A missing or
// expired session comes back anonymous, never nil.
type SessionResolver interface {
	Resolve(ctx context.Context, sid string) (*session.Session, error)
}

type AuthMiddleware struct {
	Sessions SessionResolver
	Cookies  session.CookieOptions
}

func NewAuthMiddleware(sessions SessionResolver, cookies session.CookieOptions) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions, Cookies: cookies}
}

// RequireAuth lets only authenticated sessions with a verified email
// through and puts the session in the request context.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, _ := session.IDFromRequest(r)

		sess, err := a.Sessions.Resolve(r.Context(), sid)
		if err != nil {
			logger.Error("session lookup failed", map[string]any{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "An unexpected error occurred. Please try again later.",
			})
			return
		}

		switch sess.State {
		case session.StateInitializing:
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusAccepted, map[string]string{
				"state":   string(session.StateInitializing),
				"message": "Loading...",
			})
			return

		case session.StateAuthenticated:
			if !sess.User.EmailVerified {
				redirect(w, r, VerifyEmailPath, http.StatusForbidden)
				return
			}

		default:
			if sid != "" {
				session.ClearCookie(w, a.Cookies)
			}
			redirect(w, r, LoginPath, http.StatusUnauthorized)
			return
		}

		ctx := session.WithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// redirect sends browsers to path. Script clients asking for JSON get
// status and the target instead, since they cannot follow a page redirect.
func redirect(w http.ResponseWriter, r *http.Request, path string, status int) {
	if WantsJSON(r) {
		writeJSON(w, status, map[string]string{"redirect": path})
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// WantsJSON reports a fetch/XHR style request.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package session

import (
	"net/http"
	"time"
)

const CookieName = "nexus_session"

// CookieOptions controls how the session cookie is issued. The cookie is
// always HttpOnly; SameSite defaults to Lax so the provider's callback
// redirect still carries it.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// SetCookie issues the session cookie, expiring with the session.
func SetCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time, opts CookieOptions) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		ClearCookie(w, opts)
		return
	}
	writeCookie(w, sessionID, expiresAt, maxAge, opts)
}

// ClearCookie tells the browser to drop the session cookie.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	writeCookie(w, "", time.Unix(0, 0), -1, opts)
}

func writeCookie(w http.ResponseWriter, value string, expires time.Time, maxAge int, opts CookieOptions) {
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// IDFromRequest returns the session id carried by the request cookie.
func IDFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

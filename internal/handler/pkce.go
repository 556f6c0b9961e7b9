package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

// newPKCE creates an S256 verifier/challenge pair and keeps the verifier in
// a cookie until the callback.
func (h *Handler) newPKCE(c *gin.Context) (challenge string) {
	verifier := oauth2.GenerateVerifier()
	h.setFlowCookie(c, pkceCookieName, verifier, pkceTTL)
	return oauth2.S256ChallengeFromVerifier(verifier)
}

func pkceVerifier(c *gin.Context) string {
	v, err := c.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return v
}

// setFlowCookie issues a short-lived cookie of the login round trip. A
// negative ttl deletes it.
func (h *Handler) setFlowCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

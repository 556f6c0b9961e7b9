package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/identity"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/middleware"
	"github.com/Saurav036/nexus/internal/session"
	"github.com/Saurav036/nexus/internal/validation"

	"github.com/gin-gonic/gin"
)

// loginPage describes the login screen. A signed-in user goes straight to
// the dashboard.
func (h *Handler) loginPage(c *gin.Context) {
	if s := h.currentSession(c); s.Authenticated() {
		c.Redirect(http.StatusFound, middleware.DashboardPath)
		return
	}

	email := validation.Sanitize(c.Query("email"))
	login := "/auth/login"
	if email != "" {
		login += "?" + url.Values{"email": {email}}.Encode()
	}

	c.JSON(http.StatusOK, gin.H{
		"email":  email,
		"login":  login,
		"signup": "/signup",
	})
}

// login starts the authorization code flow.
func (h *Handler) login(c *gin.Context) {
	opts := identity.AuthorizeOptions{
		LoginHint: validation.Sanitize(c.Query("email")),
	}
	if c.Query("screen_hint") == "signup" {
		opts.ScreenHint = "signup"
	}
	h.redirectToProvider(c, opts)
}

// invitation accepts an invitation link from the provider's email and
// continues it through the provider.
func (h *Handler) invitation(c *gin.Context) {
	opts := identity.AuthorizeOptions{
		Invitation:       c.Query("invitation"),
		Organization:     c.Query("organization"),
		OrganizationName: c.Query("organization_name"),
	}
	if opts.Invitation == "" || opts.Organization == "" {
		logger.Warn("incomplete invitation link", map[string]any{
			"has_invitation":   opts.Invitation != "",
			"has_organization": opts.Organization != "",
		})
		c.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}
	h.redirectToProvider(c, opts)
}

func (h *Handler) redirectToProvider(c *gin.Context, opts identity.AuthorizeOptions) {
	state, err := h.generateState(c)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	challenge := h.newPKCE(c)

	c.Redirect(http.StatusFound, h.idp.AuthCodeURL(state, challenge, opts))
}

func (h *Handler) callback(c *gin.Context) {
	errParam := c.Query("error")
	errDesc := c.Query("error_description")

	// provider errors are common during signup and email verification
	if errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"error": errParam,
			"desc":  errDesc,
		})
		h.clearLoginCookies(c)
		c.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := pkceVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	sess, err := h.sessions.Complete(c.Request.Context(), code, codeVerifier)
	if errors.Is(err, backend.ErrSessionExpired) {
		logger.Warn("backend rejected login", map[string]any{
			"error": err.Error(),
		})
		h.clearLoginCookies(c)
		session.ClearCookie(c.Writer, h.cookies)
		c.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}
	if err != nil {
		logger.Error("login failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	h.clearLoginCookies(c)
	session.SetCookie(c.Writer, sess.SessionID, sess.ExpiresAt, h.cookies)

	logger.Info("login succeeded", map[string]any{
		"sub":            sess.User.Subject,
		"ip":             c.ClientIP(),
		"email_verified": sess.User.EmailVerified,
	})

	if !sess.User.EmailVerified {
		c.Redirect(http.StatusFound, middleware.VerifyEmailPath)
		return
	}
	c.Redirect(http.StatusFound, middleware.DashboardPath)
}

// logout ends the session here and returns the provider logout URL, which
// ends the provider's own session and comes back to the login page.
func (h *Handler) logout(c *gin.Context) {
	sid, _ := session.IDFromRequest(c.Request)
	logoutURL := h.sessions.Logout(c.Request.Context(), sid, h.publicURL+middleware.LoginPath)

	session.ClearCookie(c.Writer, h.cookies)

	if middleware.WantsJSON(c.Request) {
		c.JSON(http.StatusOK, gin.H{"logout_url": logoutURL})
		return
	}
	c.Redirect(http.StatusSeeOther, logoutURL)
}

// verifyEmail describes the verification screen. Checking again means
// logging in again so the provider reports the current flag.
func (h *Handler) verifyEmail(c *gin.Context) {
	s := h.currentSession(c)
	if !s.Authenticated() {
		c.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}
	if s.User.EmailVerified {
		c.Redirect(http.StatusFound, middleware.DashboardPath)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":   "Email Verification Required",
		"message": "Please verify your email address to continue.",
		"email":   s.User.Email,
		"recheck": "/auth/login?" + url.Values{
			"email":       {s.User.Email},
			"screen_hint": {"signup"},
		}.Encode(),
	})
}

// me returns the signed-in principal.
func (h *Handler) me(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"user":         s.User,
		"organization": s.Organization,
		"enrichment":   s.Enrichment,
		"expires_at":   s.ExpiresAt,
	})
}

// token hands the UI a fresh access token.
func (h *Handler) token(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())

	tok, err := h.sessions.AccessToken(c.Request.Context(), s.SessionID)
	if err != nil {
		logger.Warn("access token unavailable", map[string]any{
			"sub":   s.User.Subject,
			"error": err.Error(),
		})
		h.sessions.Logout(c.Request.Context(), s.SessionID, "")
		session.ClearCookie(c.Writer, h.cookies)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    "Your session has expired. Please login again.",
			"redirect": middleware.LoginPath,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": tok})
}

// currentSession resolves the cookie outside the guard. Lookup failures
// count as signed out.
func (h *Handler) currentSession(c *gin.Context) *session.Session {
	sid, _ := session.IDFromRequest(c.Request)
	s, err := h.sessions.Resolve(c.Request.Context(), sid)
	if err != nil {
		logger.Warn("session lookup failed", map[string]any{
			"error": err.Error(),
		})
		return &session.Session{State: session.StateAnonymous}
	}
	return s
}

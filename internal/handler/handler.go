package handler

import (
	"context"
	"strings"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/identity"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/middleware"
	"github.com/Saurav036/nexus/internal/session"
	"github.com/Saurav036/nexus/internal/signup"

	"github.com/gin-gonic/gin"
)

// Authorizer builds the provider's authorization URL.
type Authorizer interface {
	AuthCodeURL(state, codeChallenge string, opts identity.AuthorizeOptions) string
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Healthy(ctx context.Context) error
}

// Sessions is the session lifecycle the handlers drive.
type Sessions interface {
	Complete(ctx context.Context, code, codeVerifier string) (*session.Session, error)
	Resolve(ctx context.Context, sid string) (*session.Session, error)
	Logout(ctx context.Context, sid, returnTo string) string
	AccessToken(ctx context.Context, sid string) (string, error)
}

type Deps struct {
	IdP      Authorizer
	Sessions Sessions
	// API is the authenticated backend; signup uses its own client.
	API *backend.API

	Flow       *signup.Flow
	Flows      *signup.Store
	Superseder *signup.Superseder
	// Limiter throttles the signup endpoints; nil disables it.
	Limiter *middleware.RateLimiter

	// Store is the session store checked by /health.
	Store Pinger

	PublicURL string
	Cookies   session.CookieOptions
}

type Handler struct {
	idp      Authorizer
	sessions Sessions
	api      *backend.API

	flow       *signup.Flow
	flows      *signup.Store
	superseder *signup.Superseder
	limiter    *middleware.RateLimiter
	store      Pinger

	publicURL string
	cookies   session.CookieOptions
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		idp:        d.IdP,
		sessions:   d.Sessions,
		api:        d.API,
		flow:       d.Flow,
		flows:      d.Flows,
		superseder: d.Superseder,
		limiter:    d.Limiter,
		store:      d.Store,
		publicURL:  strings.TrimSuffix(d.PublicURL, "/"),
		cookies:    d.Cookies,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	guard := middleware.GinRequireAuth(middleware.NewAuthMiddleware(h.sessions, h.cookies))

	// auth
	r.GET("/login", h.loginPage)
	r.GET("/auth/login", h.login)
	r.GET("/auth/invitation", h.invitation)
	r.GET("/callback", h.callback)
	r.POST("/auth/logout", h.logout)
	r.GET("/verify-email", h.verifyEmail)
	r.GET("/auth/me", guard, h.me)
	r.GET("/auth/token", guard, h.token)

	// signup
	sg := r.Group("/signup")
	sg.GET("", h.signupStep)
	sg.GET("/:step", h.signupStep)
	posts := sg.Group("")
	if h.limiter != nil {
		posts.Use(h.limiter.Middleware())
	}
	posts.POST("/email", h.submitEmail)
	posts.POST("/choice", h.signupChoice)
	posts.POST("/public-domain/continue", h.continuePublicDomain)
	posts.POST("/org-exists/join", h.joinOrganization)
	posts.POST("/org-exists/contact-admin", h.contactAdmin)
	posts.POST("/create-org", h.createOrganization)
	posts.POST("/restart", h.restartSignup)

	// dashboard
	anyRole := middleware.RequireRoles(session.RoleAdmin, session.RoleMember)
	adminOnly := middleware.RequireRoles(session.RoleAdmin)

	r.GET("/dashboard", guard, anyRole, h.dashboard)

	api := r.Group("/api", guard)

	admin := api.Group("", adminOnly)
	admin.GET("/users", h.listUsers)
	admin.GET("/users/:id", h.getUser)
	admin.POST("/users/invite", h.inviteUser)
	admin.PATCH("/users/:id", h.updateUser)
	admin.DELETE("/users/:id", h.deleteUser)

	admin.GET("/organization", h.getOrganization)
	admin.PATCH("/organization", h.updateOrganization)

	admin.GET("/connections", h.listConnections)
	admin.GET("/connections/:id", h.getConnection)
	admin.POST("/connections", h.createConnection)
	admin.PATCH("/connections/:id", h.updateConnection)
	admin.DELETE("/connections/:id", h.deleteConnection)

	admin.GET("/credentials", h.listCredentials)
	admin.GET("/credentials/:id", h.getCredential)
	admin.POST("/credentials", h.createCredential)
	admin.PATCH("/credentials/:id", h.updateCredential)
	admin.DELETE("/credentials/:id", h.deleteCredential)

	member := api.Group("", anyRole)
	member.GET("/reports", h.listReports)
	member.GET("/reports/:id", h.getReport)
	member.GET("/reports/:id/api-details", h.reportAPIDetails)
	member.POST("/reports", h.createReport)
	member.PATCH("/reports/:id", h.updateReport)
	member.DELETE("/reports/:id", h.deleteReport)
	member.POST("/reports/:id/download", h.downloadReport)

	member.GET("/tableau/connections/:id/workbooks", h.workbooks)
	member.GET("/tableau/connections/:id/workbooks/:workbook/views", h.views)

	// operational
	r.GET("/health", h.health)
	r.GET("/health/backend", h.backendHealth)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

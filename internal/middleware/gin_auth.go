package middleware

import (
	"net/http"
	"slices"

	"github.com/Saurav036/nexus/internal/session"

	"github.com/gin-gonic/gin"
)

// GinRequireAuth adapts the net/http AuthMiddleware to Gin.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		auth.RequireAuth(next).ServeHTTP(c.Writer, c.Request)

		// the guard answered on its own
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}

// RequireRoles passes principals whose role is in roles. An empty set
// passes any authenticated principal; a principal without a role never
// passes a non-empty set. Must run after GinRequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromContext(c.Request.Context())
		if !ok {
			redirect(c.Writer, c.Request, LoginPath, http.StatusUnauthorized)
			c.Abort()
			return
		}
		if len(roles) == 0 {
			c.Next()
			return
		}
		if sess.User.Role == "" || !slices.Contains(roles, sess.User.Role) {
			redirect(c.Writer, c.Request, DashboardPath, http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

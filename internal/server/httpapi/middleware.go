package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"secureshare/internal/common"
	"secureshare/internal/rbac"
	"secureshare/internal/server/models"
)

const callerKey = "caller"
const tokenKey = "token"

// requireAuth validates the bearer token (signature, expiry, revocation)
// and stashes the caller's user row in the request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		caller, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(callerKey, caller)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// requirePermission gates a route on the caller holding at least one of the
// listed permissions. Admin passes unconditionally.
func (s *Server) requirePermission(required ...rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := caller(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		if !rbac.CanAccess([]rbac.Role{user.Role}, rbac.Permissions(user.Role), required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func caller(c *gin.Context) *models.User {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func bearerToken(c *gin.Context) string {
	v, ok := c.Get(tokenKey)
	if !ok {
		return ""
	}
	token, _ := v.(string)
	return token
}

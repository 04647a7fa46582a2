package middleware

import (
	"strings"

	"simedu_backend/internal/config"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer credential and re-resolves the
// caller against the directory on every request. Tenant and role come
// from the user row, never from token claims, so a soft delete or an
// admin demotion takes effect on the next request rather than at token
// expiry. Missing, malformed, expired or badly signed tokens and
// tokens of deactivated users all end the request with 401.
func AuthMiddleware(cfg *config.Config, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := users.ResolveByID(claims.UserID)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		claims.CompanyID = user.CompanyID
		claims.IsAdmin = user.IsAdmin
		claims.Email = user.Email

		c.Set("user", claims)
		c.Next()
	}
}

// AdminMiddleware gates admin-only operations. It assumes
// AuthMiddleware already ran.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !claims.IsAdmin {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

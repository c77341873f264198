package middlewares

import (
	"strings"
	"time"

	"Hacknox/models"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

const SessionCookie = "session"

// bearerToken reads the session cookie first, then an "Authorization: Bearer" header.
func bearerToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func authenticate(c *gin.Context) (*utils.Claims, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, utils.NewUnauthorized("authentication required")
	}
	claims, err := utils.ParseToken(raw)
	if err != nil {
		return nil, utils.NewUnauthorized("invalid token")
	}
	revoked, err := services.IsTokenRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		return nil, utils.Wrap(err, "check session")
	}
	if revoked {
		return nil, utils.NewUnauthorized("session has been logged out")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_role", claims.Role)
	c.Set("token_id", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("token_exp", claims.ExpiresAt.Time)
	} else {
		c.Set("token_exp", time.Now().Add(utils.TokenTTL()))
	}
}

// JWTAuthMiddleware rejects requests without a valid, unrevoked session.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c)
		if err != nil {
			utils.Abort(c, err)
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// RoleAuthMiddleware must run after JWTAuthMiddleware.
func RoleAuthMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleAny, exists := c.Get("user_role")
		if !exists {
			utils.Abort(c, utils.NewUnauthorized("authentication required"))
			return
		}
		role := roleAny.(models.UserRole)
		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				c.Next()
				return
			}
		}
		utils.Abort(c, utils.NewForbidden("insufficient permissions"))
	}
}

// JWTTryAuthMiddleware attaches the identity when a valid token is present and
// lets anonymous requests through otherwise.
func JWTTryAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := authenticate(c); err == nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by the auth middlewares.
func CurrentUserID(c *gin.Context) uint32 {
	v, _ := c.Get("user_id")
	id, _ := v.(uint32)
	return id
}

func CurrentRole(c *gin.Context) models.UserRole {
	v, _ := c.Get("user_role")
	role, _ := v.(models.UserRole)
	return role
}

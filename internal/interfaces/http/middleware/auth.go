// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/auth"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/session"
	"github.com/sirupsen/logrus"
)

const (
	sessionIDKey = "session_id"
	adminIDKey   = "admin_id"
	isAdminKey   = "is_admin"
)

// SessionMiddleware makes sure every request carries a gateway session.
// A missing or invalid cookie gets a fresh session id and a new signed cookie.
func SessionMiddleware(cfg *config.Config, logger *logrus.Logger) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		if tokenString, err := c.Cookie(cfg.Session.CookieName); err == nil && tokenString != "" {
			claims, err := jwtManager.ValidateToken(tokenString)
			if err == nil {
				c.Set(sessionIDKey, claims.SessionID)
				c.Next()
				return
			}
			logger.WithError(err).Debug("Replacing invalid session cookie")
		}

		sessionID := auth.NewSessionID()
		token, err := jwtManager.GenerateSessionToken(sessionID)
		if err != nil {
			logger.WithError(err).Error("Failed to sign session token")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to start session",
			})
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			cfg.Session.CookieName,
			token,
			int(cfg.Session.Expiry.Seconds()),
			"/",
			cfg.Session.Domain,
			cfg.Session.Secure,
			true,
		)
		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// AdminChecker answers whether the platform user administers the store
type AdminChecker interface {
	CheckAdmin(ctx context.Context, creds *platform.Credentials) (*platform.AuthStatus, error)
}

// AdminMiddleware ensures the platform user behind the request is an admin
func AdminMiddleware(cfg *config.Config, checker AdminChecker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.New(GetSessionIDFromContext(c), c.Request.Cookies(), cfg.Session.CookieName)

		status, err := checker.CheckAdmin(c.Request.Context(), sess.Credentials)
		if err != nil {
			logger.WithError(err).Warn("Admin auth check failed")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !status.Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !status.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		// Self-protection rules need to know who the admin is
		if status.User == nil || status.User.ID == 0 {
			logger.Warn("Admin auth check returned no user id")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		adminID := status.User.ID
		c.Set(adminIDKey, adminID)
		c.Set(isAdminKey, true)
		c.Next()
	}
}

// GetSessionIDFromContext extracts the gateway session id from gin context
func GetSessionIDFromContext(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// GetAdminIDFromContext extracts the platform id of the admin from gin context
func GetAdminIDFromContext(c *gin.Context) (uint, bool) {
	adminID, exists := c.Get(adminIDKey)
	if !exists {
		return 0, false
	}
	id, ok := adminID.(uint)
	return id, ok
}

// IsAdminFromContext checks if the request passed the admin check
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}

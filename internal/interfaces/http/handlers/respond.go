package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/interfaces/http/middleware"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/session"
	"github.com/sirupsen/logrus"
)

// currentSession builds the shopper's session from the request cookies
func currentSession(c *gin.Context, cfg *config.Config) *session.Session {
	return session.New(middleware.GetSessionIDFromContext(c), c.Request.Cookies(), cfg.Session.CookieName)
}

// relayCookies passes cookies the platform set during the request on to
// the browser, scoped to this site.
func relayCookies(c *gin.Context, sess *session.Session) {
	for _, cookie := range sess.Credentials.Updated() {
		relayed := *cookie
		relayed.Domain = ""
		if relayed.Path == "" {
			relayed.Path = "/"
		}
		http.SetCookie(c.Writer, &relayed)
	}
}

func respond(c *gin.Context, sess *session.Session, message string, data interface{}) {
	if sess != nil {
		relayCookies(c, sess)
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}

func internalError(c *gin.Context, logger *logrus.Logger, err error, message string) {
	logger.WithError(err).WithField("path", c.FullPath()).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": message,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/user"
	"github.com/lucascapelli/O-Especialista.Carros/internal/interfaces/http/middleware"
)

// UserAdminHandler handles admin user management endpoints
type UserAdminHandler struct {
	adminService *user.AdminService
	config       *config.Config
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(adminService *user.AdminService, cfg *config.Config) *UserAdminHandler {
	return &UserAdminHandler{
		adminService: adminService,
		config:       cfg,
	}
}

// DeleteUser handles DELETE /admin/users/:id?confirmed=true
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	sess := currentSession(c, h.config)

	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	adminID, _ := middleware.GetAdminIDFromContext(c)
	confirmed := c.Query("confirmed") == "true"

	res := h.adminService.Delete(c.Request.Context(), sess.Credentials, adminID, userID, confirmed)
	respond(c, sess, "User deletion", res)
}

// ToggleUserStatus handles POST /admin/users/:id/toggle-status
func (h *UserAdminHandler) ToggleUserStatus(c *gin.Context) {
	sess := currentSession(c, h.config)

	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	adminID, _ := middleware.GetAdminIDFromContext(c)

	res := h.adminService.ToggleActive(c.Request.Context(), sess.Credentials, adminID, userID)
	respond(c, sess, "User status", res)
}

// internal/domain/user/admin_service.go
package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/sirupsen/logrus"
)

// ActionDeleteUser is the confirmation asked before deleting an account
const ActionDeleteUser = "delete_user"

const (
	msgConfirmDelete    = "Tem certeza que deseja excluir este usuário? Esta ação não pode ser desfeita."
	msgDeleted          = "Usuário excluído com sucesso!"
	msgDeleteFailed     = "Erro ao excluir usuário"
	msgDeleteConnection = "Erro de conexão ao excluir usuário"
	msgDeleteSelf       = "Você não pode excluir sua própria conta."
	msgToggled          = "Status do usuário atualizado!"
	msgToggleFailed     = "Erro ao atualizar status do usuário"
	msgToggleConnection = "Erro de conexão ao atualizar usuário"
	msgToggleSelf       = "Você não pode desativar sua própria conta."
)

// Platform is the part of the commerce platform user administration needs
type Platform interface {
	DeleteUser(ctx context.Context, creds *platform.Credentials, userID uint) (*platform.MutationResult, error)
	ToggleUserStatus(ctx context.Context, creds *platform.Credentials, userID uint) (*platform.MutationResult, error)
}

// Result is the outcome of an admin user operation
type Result struct {
	view.Effects
	UserID  uint `json:"user_id"`
	Removed bool `json:"removed,omitempty"`
}

// AdminService handles admin user management operations
type AdminService struct {
	platform Platform
	logger   *logrus.Logger
}

// NewAdminService creates a new admin user service
func NewAdminService(p Platform, logger *logrus.Logger) *AdminService {
	return &AdminService{
		platform: p,
		logger:   logger,
	}
}

// Delete removes a customer account once the admin confirmed it
func (s *AdminService) Delete(ctx context.Context, creds *platform.Credentials, adminID, userID uint, confirmed bool) *Result {
	res := &Result{UserID: userID}
	if userID == adminID {
		res.Error(msgDeleteSelf)
		return res
	}
	if !confirmed {
		res.Confirm = &view.Confirm{Action: ActionDeleteUser, Subject: strconv.FormatUint(uint64(userID), 10), Message: msgConfirmDelete}
		return res
	}

	logger := s.logger.WithFields(logrus.Fields{"admin_id": adminID, "user_id": userID})
	result, err := s.platform.DeleteUser(ctx, creds, userID)
	if err == nil && !result.Success {
		err = &platform.Error{Status: http.StatusOK, Message: result.Error}
	}
	if err != nil {
		logger.WithError(err).Warn("User deletion failed")
		res.Error(platform.UserMessage(err, msgDeleteFailed, msgDeleteConnection))
		return res
	}

	logger.Info("User deleted")
	res.Removed = true
	res.Success(firstNonEmpty(result.Message, msgDeleted))
	return res
}

// ToggleActive activates or deactivates a customer account
func (s *AdminService) ToggleActive(ctx context.Context, creds *platform.Credentials, adminID, userID uint) *Result {
	res := &Result{UserID: userID}
	if userID == adminID {
		res.Error(msgToggleSelf)
		return res
	}

	logger := s.logger.WithFields(logrus.Fields{"admin_id": adminID, "user_id": userID})
	result, err := s.platform.ToggleUserStatus(ctx, creds, userID)
	if err == nil && !result.Success {
		err = &platform.Error{Status: http.StatusOK, Message: result.Error}
	}
	if err != nil {
		logger.WithError(err).Warn("User status toggle failed")
		res.Error(platform.UserMessage(err, msgToggleFailed, msgToggleConnection))
		return res
	}

	logger.Info("User status toggled")
	res.Success(firstNonEmpty(result.Message, msgToggled))
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// internal/domain/payment/store.go
package payment

import (
	"context"
	"fmt"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	redisdb "github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
)

// Store keeps presented payments per session
type Store struct {
	redis  *redisdb.Client
	config *config.Config
}

// NewStore creates a new payment store
func NewStore(redisClient *redisdb.Client, cfg *config.Config) *Store {
	return &Store{
		redis:  redisClient,
		config: cfg,
	}
}

func (s *Store) key(sessionID, transactionID string) string {
	return s.config.RedisKey("payment", sessionID, transactionID)
}

// Save records a presented payment
func (s *Store) Save(ctx context.Context, sessionID string, p *SimulatedPayment) error {
	if err := s.redis.SetJSON(ctx, s.key(sessionID, p.TransactionID), p, s.config.Payments.ModalTTL); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// Load returns a presented payment, or nil
func (s *Store) Load(ctx context.Context, sessionID, transactionID string) (*SimulatedPayment, error) {
	var p SimulatedPayment
	found, err := s.redis.GetJSON(ctx, s.key(sessionID, transactionID), &p)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

// Delete forgets a presented payment
func (s *Store) Delete(ctx context.Context, sessionID, transactionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID, transactionID)); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

// internal/domain/checkout/store.go
package checkout

import (
	"context"
	"fmt"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	redisdb "github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
)

// Store holds the checkout lock and the remembered taxpayer id
type Store struct {
	redis  *redisdb.Client
	config *config.Config
}

// NewStore creates a new checkout store
func NewStore(redisClient *redisdb.Client, cfg *config.Config) *Store {
	return &Store{
		redis:  redisClient,
		config: cfg,
	}
}

func (s *Store) lockKey(sessionID string) string {
	return s.config.RedisKey("checkout", sessionID)
}

func (s *Store) taxIDKey(sessionID string) string {
	return s.config.RedisKey("taxid", sessionID)
}

// Acquire takes the session's checkout lock
func (s *Store) Acquire(ctx context.Context, sessionID string) (string, bool, error) {
	token, ok, err := s.redis.Acquire(ctx, s.lockKey(sessionID), s.config.Storefront.CheckoutLockTTL)
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	return token, ok, nil
}

// Release gives the checkout lock back if token still owns it
func (s *Store) Release(ctx context.Context, sessionID, token string) (bool, error) {
	released, err := s.redis.Release(ctx, s.lockKey(sessionID), token)
	if err != nil {
		return false, fmt.Errorf("failed to release checkout lock: %w", err)
	}
	return released, nil
}

// RememberTaxID keeps a validated taxpayer id for later checkouts
func (s *Store) RememberTaxID(ctx context.Context, sessionID, taxID string) error {
	if err := s.redis.SetJSON(ctx, s.taxIDKey(sessionID), taxID, s.config.Session.Expiry); err != nil {
		return fmt.Errorf("failed to remember taxpayer id: %w", err)
	}
	return nil
}

// TaxID returns the remembered taxpayer id, or an empty string
func (s *Store) TaxID(ctx context.Context, sessionID string) (string, error) {
	var taxID string
	if _, err := s.redis.GetJSON(ctx, s.taxIDKey(sessionID), &taxID); err != nil {
		return "", fmt.Errorf("failed to load taxpayer id: %w", err)
	}
	return taxID, nil
}

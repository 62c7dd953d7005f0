// internal/domain/cart/store.go
package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	redisdb "github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
)

// Store keeps per-session cart state in Redis
type Store struct {
	redis  *redisdb.Client
	config *config.Config
}

// NewStore creates a new cart store
func NewStore(redisClient *redisdb.Client, cfg *config.Config) *Store {
	return &Store{
		redis:  redisClient,
		config: cfg,
	}
}

func (s *Store) modelKey(sessionID string) string {
	return s.config.RedisKey("cart", sessionID)
}

func (s *Store) quoteKey(sessionID string) string {
	return s.config.RedisKey("shipping", sessionID)
}

func (s *Store) inflightKey(sessionID string, itemID uint) string {
	return s.config.RedisKey("inflight", sessionID, strconv.FormatUint(uint64(itemID), 10))
}

// LoadModel returns the session's cart model, or an empty one
func (s *Store) LoadModel(ctx context.Context, sessionID string) (*Model, error) {
	model := &Model{SessionID: sessionID}
	if _, err := s.redis.GetJSON(ctx, s.modelKey(sessionID), model); err != nil {
		return nil, fmt.Errorf("failed to load cart model: %w", err)
	}
	model.SessionID = sessionID
	return model, nil
}

// SaveModel persists the cart model
func (s *Store) SaveModel(ctx context.Context, model *Model) error {
	if err := s.redis.SetJSON(ctx, s.modelKey(model.SessionID), model, s.config.Storefront.CartModelTTL); err != nil {
		return fmt.Errorf("failed to save cart model: %w", err)
	}
	return nil
}

// DeleteModel forgets the cart model
func (s *Store) DeleteModel(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.modelKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete cart model: %w", err)
	}
	return nil
}

// LoadQuote returns the cached shipping quote, or nil
func (s *Store) LoadQuote(ctx context.Context, sessionID string) (*Quote, error) {
	var quote Quote
	found, err := s.redis.GetJSON(ctx, s.quoteKey(sessionID), &quote)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping quote: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &quote, nil
}

// SaveQuote caches a shipping quote
func (s *Store) SaveQuote(ctx context.Context, sessionID string, quote *Quote) error {
	if err := s.redis.SetJSON(ctx, s.quoteKey(sessionID), quote, s.config.Storefront.ShippingQuoteTTL); err != nil {
		return fmt.Errorf("failed to save shipping quote: %w", err)
	}
	return nil
}

// DeleteQuote drops the cached shipping quote
func (s *Store) DeleteQuote(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.quoteKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete shipping quote: %w", err)
	}
	return nil
}

// AcquireItem takes the in-flight guard for one cart line. The token
// returned proves ownership to ReleaseItem.
func (s *Store) AcquireItem(ctx context.Context, sessionID string, itemID uint) (string, bool, error) {
	token, ok, err := s.redis.Acquire(ctx, s.inflightKey(sessionID, itemID), s.config.Storefront.InflightTTL)
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire item guard: %w", err)
	}
	return token, ok, nil
}

// ReleaseItem gives the in-flight guard back if token still owns it
func (s *Store) ReleaseItem(ctx context.Context, sessionID string, itemID uint, token string) (bool, error) {
	released, err := s.redis.Release(ctx, s.inflightKey(sessionID, itemID), token)
	if err != nil {
		return false, fmt.Errorf("failed to release item guard: %w", err)
	}
	return released, nil
}

package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionTTL bounds how long an abandoned checkout survives before the
// store expires it.
const SessionTTL = 2 * time.Hour

// Store persists checkout sessions between requests.
type Store interface {
	// Get returns the session for the cart, or nil when none exists.
	Get(ctx context.Context, cartID uuid.UUID) (*Session, error)

	// Save writes the session, refreshing its TTL.
	Save(ctx context.Context, session *Session) error

	// Delete removes the session. Deleting a missing session is a no-op.
	Delete(ctx context.Context, cartID uuid.UUID) error
}

// redisStore implements Store on Redis, one JSON document per session.
type redisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger.With().Str("component", "checkout-store").Logger(),
	}
}

func sessionKey(cartID uuid.UUID) string {
	return fmt.Sprintf("checkout:%s", cartID)
}

func (s *redisStore) Get(ctx context.Context, cartID uuid.UUID) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(cartID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to read checkout session")
		return nil, fmt.Errorf("failed to read checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to decode checkout session")
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	return &session, nil
}

func (s *redisStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.CartID), payload, SessionTTL).Err(); err != nil {
		s.logger.Error().Err(err).Str("cart_id", session.CartID.String()).Msg("failed to save checkout session")
		return fmt.Errorf("failed to save checkout session: %w", err)
	}

	return nil
}

func (s *redisStore) Delete(ctx context.Context, cartID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(cartID)).Err(); err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete checkout session")
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}

// Package cache adds a Redis read-through layer in front of the entity
// configuration provider so hot entity types do not hammer the collaborator
// on every intake.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/schema"
)

const (
	formConfigKeyPrefix = "entitycfg:form:"
	entityTypeKeyPrefix = "entitycfg:code:"
)

// Store is a read-through cache implementing schema.ConfigProvider. Cache
// failures fall through to the underlying provider; the cache can never make
// a lookup fail that would otherwise succeed.
type Store struct {
	client *redis.Client
	next   schema.ConfigProvider
	ttl    time.Duration
	logger *slog.Logger
}

// Wrap decorates a provider with caching. Returns next unchanged when
// client is nil (Redis not configured).
func Wrap(client *redis.Client, next schema.ConfigProvider, ttl time.Duration, logger *slog.Logger) schema.ConfigProvider {
	if client == nil || next == nil {
		return next
	}
	return &Store{client: client, next: next, ttl: ttl, logger: logger}
}

func (s *Store) FetchByFormConfig(ctx context.Context, formConfigID, formVersion string) (*schema.EntityConfiguration, error) {
	key := fmt.Sprintf("%s%s:%s", formConfigKeyPrefix, formConfigID, formVersion)
	return s.readThrough(ctx, key, func() (*schema.EntityConfiguration, error) {
		return s.next.FetchByFormConfig(ctx, formConfigID, formVersion)
	})
}

func (s *Store) FetchByEntityType(ctx context.Context, entityTypeCode string) (*schema.EntityConfiguration, error) {
	key := entityTypeKeyPrefix + entityTypeCode
	return s.readThrough(ctx, key, func() (*schema.EntityConfiguration, error) {
		return s.next.FetchByEntityType(ctx, entityTypeCode)
	})
}

func (s *Store) readThrough(ctx context.Context, key string, fetch func() (*schema.EntityConfiguration, error)) (*schema.EntityConfiguration, error) {
	cached, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cfg schema.EntityConfiguration
		if unmarshalErr := json.Unmarshal(cached, &cfg); unmarshalErr == nil {
			return &cfg, nil
		}
		// Corrupt entry: drop it and refetch.
		s.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		s.logger.WarnContext(ctx, "entity configuration cache read failed",
			"key", key,
			"error", err,
		)
	}

	cfg, err := fetch()
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(cfg); marshalErr == nil {
		if setErr := s.client.Set(ctx, key, payload, s.ttl).Err(); setErr != nil {
			s.logger.WarnContext(ctx, "entity configuration cache write failed",
				"key", key,
				"error", setErr,
			)
		}
	}
	return cfg, nil
}

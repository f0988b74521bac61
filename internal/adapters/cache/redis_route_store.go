package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "route:"

// RedisRouteStore keeps optimization results in Redis under a random id.
// Every entry expires after the configured TTL.
type RedisRouteStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteStore(client *redis.Client, ttl time.Duration) *RedisRouteStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRouteStore{Client: client, TTL: ttl}
}

func routeKey(id string) string {
	return routeKeyPrefix + id
}

// Store a result and return the id it can be fetched with.
func (s *RedisRouteStore) Save(ctx context.Context, result *domain.OptimizationResult) (_ string, err error) {
	defer obs.Time(ctx, "routes.store.Save")(&err)

	if s.Client == nil {
		return "", errors.New("route store: redis client is nil")
	}
	if result == nil {
		return "", errors.New("route store: result is nil")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("save route: encode result: %w", err)
	}

	id := uuid.NewString()
	if err := s.Client.Set(ctx, routeKey(id), payload, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("save route id=%s: redis set: %w", id, err)
	}

	return id, nil
}

// Fetch a stored result. Unknown and expired ids return ports.ErrRouteNotFound.
func (s *RedisRouteStore) Get(ctx context.Context, id string) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "routes.store.Get")(&err)

	if s.Client == nil {
		return nil, errors.New("route store: redis client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ports.ErrRouteNotFound
	}

	payload, err := s.Client.Get(ctx, routeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route id=%s: redis get: %w", id, err)
	}

	var result domain.OptimizationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("get route id=%s: decode result: %w", id, err)
	}

	return &result, nil
}

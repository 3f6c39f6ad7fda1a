package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// Client кэширующая обёртка над клиентом SalonService
// Ошибки Redis не ломают запрос: данные берутся из источника
type Client struct {
	origin SalonServiceClient
	rdb    RedisClient
	ttl    time.Duration
	log    Logger
}

// NewClient создает кэширующий клиент
func NewClient(origin SalonServiceClient, rdb RedisClient, ttl time.Duration, log Logger) *Client {
	return &Client{origin: origin, rdb: rdb, ttl: ttl, log: log}
}

func (c *Client) GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error) {
	key := fmt.Sprintf("catalog:salon:%d", salonID)
	return cached(ctx, c, key, func() (*salonservice.Salon, error) {
		return c.origin.GetSalon(ctx, salonID)
	})
}

func (c *Client) GetService(ctx context.Context, salonID, serviceID int64) (*salonservice.Service, error) {
	key := fmt.Sprintf("catalog:service:%d:%d", salonID, serviceID)
	return cached(ctx, c, key, func() (*salonservice.Service, error) {
		return c.origin.GetService(ctx, salonID, serviceID)
	})
}

func (c *Client) GetMaster(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error) {
	key := fmt.Sprintf("catalog:master:%d:%d", salonID, masterID)
	return cached(ctx, c, key, func() (*salonservice.Master, error) {
		return c.origin.GetMaster(ctx, salonID, masterID)
	})
}

func cached[T any](ctx context.Context, c *Client, key string, load func() (*T, error)) (*T, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
		c.log.Warn("catalogcache: corrupted entry %s, reloading", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("catalogcache: redis get %s failed: %v", key, err)
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(v); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("catalogcache: redis set %s failed: %v", key, err)
		}
	}

	return v, nil
}

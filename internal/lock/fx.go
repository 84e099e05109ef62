package lock

import (
	"github.com/fitora/fitora/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("lock",
	fx.Provide(NewClient),
	fx.Provide(NewLocker),
)

// NewClient returns nil when no redis address is configured; the locker
// degrades to a no-op in that case.
func NewClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

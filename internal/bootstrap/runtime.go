// Package bootstrap wires shared runtime dependencies for the cmd binaries.
package bootstrap

import (
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. Redis may come back nil
// when it is unreachable; the server degrades instead of refusing to start.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

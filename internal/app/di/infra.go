// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"logo_scanner/internal/platform/db"
	"logo_scanner/internal/platform/http/handler"
	platformredis "logo_scanner/internal/platform/redis"
)

// Infra holds optional shared infrastructure. Nil fields mean "not configured".
type Infra struct {
	Redis    *redis.Client
	RedisCfg platformredis.Config
	DB       *gorm.DB
}

// NewInfra connects to Redis and the scan history database when they are configured.
// An unreachable Redis only disables caching. A configured but unreachable database is an error.
func NewInfra(ctx context.Context) (*Infra, error) {
	infra := &Infra{RedisCfg: platformredis.LoadConfig()}

	if infra.RedisCfg.Enabled() {
		rdb, err := platformredis.NewRedisClient(ctx, infra.RedisCfg)
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			infra.Redis = rdb
		}
	}

	dbCfg := db.LoadConfigFromEnv()
	if dbCfg.Enabled() {
		gdb, err := db.OpenDB(dbCfg)
		if err != nil {
			_ = infra.Close()
			return nil, fmt.Errorf("open scan history db: %w", err)
		}
		infra.DB = gdb
	}
	return infra, nil
}

// Checks returns health checks for the configured dependencies.
func (i *Infra) Checks() map[string]handler.Check {
	checks := map[string]handler.Check{}
	if i.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return i.Redis.Ping(ctx).Err()
		}
	}
	if i.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := i.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	return checks
}

// Close releases every open connection.
func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.DB != nil {
		if sqlDB, err := i.DB.DB(); err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

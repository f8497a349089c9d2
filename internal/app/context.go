package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, Logger, config). Engines
// receive it at construction instead of reaching into globals; connect and
// disconnect are owned by the process boundary.
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
}

package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/config"
	"github.com/kindred-app/kindred-backend/internal/db"
	"github.com/kindred-app/kindred-backend/internal/logger"
	"github.com/kindred-app/kindred-backend/internal/server"
	"github.com/kindred-app/kindred-backend/internal/service/auth"
	"github.com/kindred-app/kindred-backend/internal/service/conversation"
	"github.com/kindred-app/kindred-backend/internal/service/like"
	"github.com/kindred-app/kindred-backend/internal/service/match"
	"github.com/kindred-app/kindred-backend/internal/service/profile"
)

func main() {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, log)

	registrars := []server.Registrar{
		auth.NewRegistrar(appCtx),
		profile.NewRegistrar(appCtx),
		like.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
		conversation.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	router := server.NewRouter(appCtx, registrars...)
	if err := server.Start(appCtx, router); err != nil {
		log.Error("server stopped", "err", err)
	}
}

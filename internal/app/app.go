package app

import (
	"context"
	"log/slog"

	httpapp "user_hub/internal/app/http"
	"user_hub/internal/config"
	"user_hub/internal/lib/jwt"
	"user_hub/internal/repository"
	asset_service "user_hub/internal/services/asset_service"
	token_service "user_hub/internal/services/token_service"
	user_service "user_hub/internal/services/user_service"
	"user_hub/internal/storage/postgresql"
	redisapp "user_hub/internal/storage/redis"
	s3app "user_hub/internal/storage/s3"
	httprouters "user_hub/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	storage    *postgresql.Storage
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx := context.Background()

	if err := postgresql.RunMigrations(ctx, cfg.DSN); err != nil {
		panic(err)
	}

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}

	userRepo := repository.NewUserRepository(storage.DB())

	fileStorage, err := s3app.NewClient(ctx,
		cfg.S3.Region,
		cfg.S3.Endpoint,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.Bucket,
	)
	if err != nil {
		panic(err)
	}

	var urlCache asset_service.URLCache
	if cfg.Redis.Addr != "" {
		redisClient := redisapp.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisClient.HealthCheck(ctx); err != nil {
			log.Warn("redis unreachable, avatar url caching disabled", slog.String("addr", cfg.Redis.Addr))
		} else {
			urlCache = repository.NewRedisURLCache(redisClient)
		}
	}

	accessCfg := jwt.Config{Secret: cfg.Token.AccessSecret, TTL: cfg.Token.AccessTTL}
	refreshCfg := jwt.Config{Secret: cfg.Token.RefreshSecret, TTL: cfg.Token.RefreshTTL}

	enricher := asset_service.NewAssetEnricher(log, fileStorage, urlCache, cfg.Assets.URLTTL, cfg.Assets.ResolveTimeout)
	tokenService := token_service.NewTokenService(log, userRepo, accessCfg, refreshCfg)
	userService := user_service.NewUserService(log, userRepo, enricher, fileStorage)

	routers := httprouters.NewRouter(log, tokenService, userService)

	server := httpapp.New(log, accessCfg, cfg.HTTP.Host, cfg.HTTP.Port, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		storage:    storage,
	}
}

func (a *App) Stop() {
	_ = a.HTTPServer.Stop()
	a.storage.Stop()
}

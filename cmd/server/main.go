// Command server runs the Ghost Gear presence and unread-activity API.
//
// @title                      Ghost Gear Presence API
// @version                    1.0
// @description                Rider presence, unread activity and support messaging for Moto Asistan.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	_ "github.com/tbourn/ghostgear-presence/docs"
	"github.com/tbourn/ghostgear-presence/internal/config"
	httpapi "github.com/tbourn/ghostgear-presence/internal/http"
	"github.com/tbourn/ghostgear-presence/internal/jobs"
	"github.com/tbourn/ghostgear-presence/internal/observability"
	"github.com/tbourn/ghostgear-presence/internal/repo"
	"github.com/tbourn/ghostgear-presence/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	lg := sysutil.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	zerolog.DefaultContextLogger = &lg
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = lg.WithContext(ctx)

	if err := run(ctx, cfg); err != nil {
		lg.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	lg := zerolog.Ctx(ctx)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			lg.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var rdb redis.Cmdable
	if cfg.RedisURL != "" {
		client, err := repo.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		lg.Info().Msg("rate limits shared through redis")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, rdb, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	pruner := &jobs.Pruner{
		DB:        db,
		Retention: cfg.Presence.PrivateRetention,
		Interval:  cfg.Presence.PruneInterval,
	}
	go pruner.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		lg.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("db_driver", cfg.DBDriver).
			Dur("online_window", cfg.Presence.OnlineWindow).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			return nil, err
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

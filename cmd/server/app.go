package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/diewo77/go-estimates/internal/config"
	"github.com/diewo77/go-estimates/internal/estimate"
	"github.com/diewo77/go-estimates/internal/metrics"
	"github.com/diewo77/go-estimates/internal/render"
	"github.com/diewo77/go-estimates/internal/server"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the main application handler with its long-lived collaborators.
type App struct {
	handler http.Handler
	redis   *redis.Client
	Service *estimate.Service
	Drafts  estimate.DraftStore
}

// NewApp wires the estimate service, the draft store and the routes.
// Drafts live in redis when REDIS_ADDR is set, in process memory otherwise.
func NewApp(ctx context.Context, cfg *config.Config, dbConn *gorm.DB, log *slog.Logger) (*App, error) {
	company, err := cfg.Company()
	if err != nil {
		return nil, err
	}
	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	app := &App{}
	if cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			_ = app.redis.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		app.Drafts = estimate.NewRedisDrafts(app.redis, cfg.DraftTTL)
		log.Info("draft store", "backend", "redis", "addr", cfg.RedisAddr, "ttl", cfg.DraftTTL)
	} else {
		app.Drafts = estimate.NewMemoryDrafts(cfg.DraftTTL)
		log.Info("draft store", "backend", "memory", "ttl", cfg.DraftTTL)
	}
	app.Service = estimate.NewService(dbConn, render.NewPDF(), estimate.Options{
		BillsDir: cfg.BillsDir,
		Company:  company,
		Logger:   log,
		Metrics:  m,
	})
	app.handler = server.New(server.Deps{
		DB:      dbConn,
		Service: app.Service,
		Drafts:  app.Drafts,
		Metrics: m,
		Logger:  log,
	})
	return app, nil
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) { a.handler.ServeHTTP(w, r) }

// Close releases the redis connection, if any.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

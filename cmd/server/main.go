package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-estimates/internal/config"
	"github.com/diewo77/go-estimates/internal/db"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := cfg.Logger()
	slog.SetDefault(log)
	if cfg.IsProduction() && cfg.DBDebug {
		log.Warn("DB_DEBUG is enabled in production; SQL statements will be logged")
	}

	dbConn, err := db.Open(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		log.Info("seeding completed successfully")
		return
	}

	if err := db.Migrate(dbConn, cfg, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if *migrateOnlyFlag {
		log.Info("migrations completed; exiting as requested")
		return
	}
	if cfg.DBSeed {
		if err := db.Seed(dbConn); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	app, err := NewApp(context.Background(), cfg, dbConn, log)
	if err != nil {
		log.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "bills_dir", cfg.BillsDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	log.Info("server stopped gracefully")
}

// Package db opens the database, applies the schema and seeds baseline data.
package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/go-estimates/internal/config"
	"github.com/diewo77/go-estimates/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers postgres:// for golang-migrate
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Open connects with a few retries so a database container has time to start.
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DatabaseDSN)
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is empty")
	}
	logLevel := logger.Silent
	if cfg.DBDebug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	dialect := Dialect(dsn)
	var dialector gorm.Dialector
	if dialect == DialectPostgres {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Warn("retrying db connection", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Info("database connected", "dialect", dialect, "dsn", MaskDSN(dsn))
	return db, nil
}

// ConnectAndMigrate opens the database, applies the schema and seeds when DB_SEED is set.
// With MIGRATIONS=1 on postgres the embedded SQL migrations are used; otherwise AutoMigrate.
func ConnectAndMigrate(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg, log); err != nil {
		return nil, err
	}
	if cfg.DBSeed {
		if err := Seed(db); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		log.Info("seed applied")
	}
	return db, nil
}

// Migrate brings the schema up to date and checks the core tables exist.
func Migrate(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
	dsn := NormalizeDSN(cfg.DatabaseDSN)
	if cfg.Migrations && Dialect(dsn) == DialectPostgres {
		if err := runSQLMigrations(ToURLDSN(dsn)); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Info("sql migrations applied")
	} else {
		for _, m := range models.All() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}
	for _, table := range []string{"customers", "items", "estimates", "estimate_items"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(url string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

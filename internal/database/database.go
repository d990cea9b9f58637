package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"productos/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open builds a *gorm.DB for the given URL without touching the network.
// The driver is picked from the URL scheme: postgres://, postgresql://,
// mysql:// and sqlite:// (or file: / :memory:) are understood.
func Open(url string) (*gorm.DB, error) {
	dialector, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case url == "":
		return nil, fmt.Errorf("database: DATABASE_URL is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "mysql://"):
		// Skip the version probe so Open stays offline.
		return mysql.New(mysql.Config{
			DSN:                       strings.TrimPrefix(url, "mysql://"),
			SkipInitializeWithVersion: true,
		}), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "file:"), url == ":memory:":
		return sqlite.Open(url), nil
	default:
		return nil, fmt.Errorf("database: unsupported URL scheme in %q (supported: postgres, mysql, sqlite)", scheme(url))
	}
}

func scheme(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i]
	}
	return url
}

// Authenticate verifies the database is reachable.
func Authenticate(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Sync migrates the schema to match the models.
func Sync(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

// Connect authenticates and syncs the schema. Failures are logged and
// returned; callers starting the HTTP server carry on regardless so the
// first query reports the outage instead.
func Connect(ctx context.Context, db *gorm.DB) error {
	slog.Info("connecting to database")
	if err := Authenticate(ctx, db); err != nil {
		slog.Error("error connecting to database", "error", err)
		return err
	}
	if err := Sync(ctx, db); err != nil {
		slog.Error("error connecting to database", "error", err)
		return err
	}
	slog.Info("connected to database")
	return nil
}

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// Pure-Go driver registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logger"
)

// Open connects to the configured database and verifies the connection.
func Open(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(log),
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		log.Info("Using SQLite database", "path", cfg.SQLitePath)
		dialector = SQLiteDialector(cfg.SQLitePath)
	default:
		log.Info("Connecting to database", "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser)
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY between transactions.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("Successfully connected to database", "driver", db.Dialector.Name())
	return db, nil
}

// SQLiteDialector opens dsn through the modernc driver with foreign keys enforced.
func SQLiteDialector(dsn string) gorm.Dialector {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return &gormsqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dsn + sep + "_pragma=foreign_keys(1)",
	}
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

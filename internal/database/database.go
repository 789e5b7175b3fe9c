package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"netkb/internal/kbconfig"
	"netkb/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the knowledgebase store and ensures the schema exists.
// The returned handle is passed explicitly to repositories and the
// reconciliation engine; there is no package-global connection.
func Open(cfg kbconfig.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(cfg.SQLitePath)
		logger.DB.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("opening knowledgebase")
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres_dsn is required when driver is postgres")
		}
		dialector = postgres.Open(cfg.PostgresDSN)
		logger.DB.Info().Str("driver", "postgres").Msg("opening knowledgebase")
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.DB.Info().Msg("knowledgebase ready")
	return db, nil
}

// Migrate creates or updates the seven knowledgebase tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Host{},
		&Credential{},
		&Group{},
		&AdminRelation{},
		&GroupRelation{},
		&LoginRelation{},
		&Share{},
	)
}

// Reset empties every table. Administrative tooling only; normal scan
// flow never deletes rows.
func Reset(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&AdminRelation{},
			&GroupRelation{},
			&LoginRelation{},
			&Share{},
			&Credential{},
			&Group{},
			&Host{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

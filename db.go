package main

import (
	"fmt"
	"log/slog"

	"recipehub/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func initDB(cfg *Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		// Migrate models individually so a failure on one doesn't block others.
		for _, m := range []interface{}{
			&models.User{},
			&models.Recipe{},
			&models.Category{},
			&models.Token{},
			&models.Favorite{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				log.Warn("migration warning", "model", fmt.Sprintf("%T", m), "error", err)
			}
		}
		if err := ensureCaseInsensitiveUniqueness(db); err != nil {
			log.Warn("ensuring case-insensitive uniqueness failed", "error", err)
		}
	}
	return db, nil
}

// ensureCaseInsensitiveUniqueness enforces username/email uniqueness at the
// store layer regardless of casing, so duplicate detection does not depend on
// every lookup remembering to fold case.
func ensureCaseInsensitiveUniqueness(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (lower(username))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (lower(email))`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

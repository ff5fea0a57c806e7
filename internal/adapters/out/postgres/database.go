// Package postgres wires the GORM connection used by the PostgreSQL state
// store and instance repository, and migrates their tables.
package postgres

import (
	"fmt"

	"pizzaworkflow/internal/adapters/out/postgres/instancerepo"
	"pizzaworkflow/internal/adapters/out/postgres/staterepo"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// Open connects to PostgreSQL. SQL logging is limited to errors.
func Open(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	return db, nil
}

// Migrate creates or updates the state_entries and workflow_instances tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&staterepo.StateEntryDTO{}, &instancerepo.InstanceDTO{})
}

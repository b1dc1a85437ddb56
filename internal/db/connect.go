package db

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/refrank/go-refrank/internal/migration"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the sqlite database at the given path and brings the
// schema up to date.
func InitDB(dbFilePath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs all pending schema migrations.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID:       migration.Initialise.ID,
			Migrate:  migration.Initialise.Migrate,
			Rollback: migration.Initialise.Rollback,
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

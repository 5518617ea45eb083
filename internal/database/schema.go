package database

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.Like{},
	}
}

// ApplySchema creates or updates every table in PersistentModels.
func ApplySchema(ctx context.Context, db *gorm.DB) error {
	observability.Logger.InfoContext(ctx, "Running GORM AutoMigrate", slog.Int("models", len(PersistentModels())))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// ResetSchema drops every managed table and recreates it.
func ResetSchema(ctx context.Context, db *gorm.DB) error {
	all := PersistentModels()
	reversed := make([]interface{}, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		reversed = append(reversed, all[i])
	}
	if err := db.WithContext(ctx).Migrator().DropTable(reversed...); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return ApplySchema(ctx, db)
}

package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/models"
	"gorm.io/gorm"
)

// Migration is one versioned schema or seed step. Applied versions are
// recorded in schema_migrations and never re-run.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// Migrations lists every step in application order.
var Migrations = []Migration{
	{Version: 1, Name: "create_schema", Up: createSchema},
	{Version: 2, Name: "seed_plant_catalog", Up: seedPlantCatalog},
	{Version: 3, Name: "seed_plant_compat", Up: seedPlantCompat},
	{Version: 4, Name: "add_composite_indexes", Up: addCompositeIndexes},
}

// Migrate applies pending migrations to DB.
func Migrate() error {
	return MigrateDatabase(DB)
}

// MigrateDatabase applies pending migrations, each in its own transaction.
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range Migrations {
		var applied models.SchemaMigration
		err := db.Where("version = ?", m.Version).First(&applied).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		logging.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration")
	}

	return nil
}

func createSchema(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&models.User{},
		&models.GardenMap{},
		&models.MapObject{},
		&models.PlantCatalogEntry{},
		&models.PlantCompatPair{},
		&models.LogEntry{},
		&models.HarvestRecord{},
	)
}

// addCompositeIndexes creates multi-column indexes used by listing and
// analytics queries, skipping any that already exist.
func addCompositeIndexes(tx *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"logs", "idx_logs_map_created", "map_id, created_at"},
		{"logs", "idx_logs_user_action_created", "user_id, action_type, created_at"},
		{"harvests", "idx_harvests_user_harvested", "user_id, harvested_at"},
		{"map_objects", "idx_map_objects_map_plant", "map_id, plant_id"},
		{"plant_compat", "idx_plant_compat_pair", "plant_a, plant_b"},
	}

	for _, idx := range indexes {
		if tx.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

package infra

import (
	"fmt"

	"github.com/tinks231/bizbooks/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection, migrates the catalog tables and
// applies the idempotent SQL patches AutoMigrate cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the catalog schema. Safe to re-run.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Item{}); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// express. Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// case-insensitive name lookups from the purchase-bill search
		{"idx_items_tenant_lower_name", `
CREATE INDEX IF NOT EXISTS idx_items_tenant_lower_name
    ON items (tenant_id, lower(name))`},
		// item codes are optional but unique per tenant when present
		{"uni_items_tenant_item_code", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_items_tenant_item_code
    ON items (tenant_id, item_code)
    WHERE item_code IS NOT NULL`},
		// only goods and services are billable
		{"chk_items_type", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_items_type') THEN
    ALTER TABLE items ADD CONSTRAINT chk_items_type CHECK (type IN ('goods', 'service'));
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

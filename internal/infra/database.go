package infra

import (
	"fmt"

	"github.com/slamora/lupanes/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the idempotent SQL patches GORM cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

// RunMigrations creates/updates all tables.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producer{},
		&model.Producto{},
		&model.PrecioProducto{},
		&model.Albaran{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate does not cover.
// Albaranes must survive deletion of what they reference: amounts are
// derived from price history at render time, so the referenced product and
// customer rows are load-bearing forever.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Month-window scans on a live, append-heavy table.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_albaranes_customer_fecha') THEN
		    CREATE INDEX idx_albaranes_customer_fecha ON albaranes (customer_id, fecha);
		  END IF;
		END $$`,
		// Price resolution always filters by product and orders by start_date.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_precios_producto_start') THEN
		    CREATE INDEX idx_precios_producto_start ON precios_producto (producto_id, start_date DESC);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}

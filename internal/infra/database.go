package infra

import (
	"fmt"

	"gestcom/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create / update all tables.
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
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Shared with integration tests so that
// they create the exact schema the server uses.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Sucursal{},
		&model.Caja{},
		&model.CuentaBancaria{},
		&model.Proveedor{},
		&model.Producto{},
		&model.Presentacion{},
		&model.Compra{},
		&model.CompraDetalle{},
		&model.Recepcion{},
		&model.RecepcionLinea{},
		&model.CreditoCompra{},
		&model.Cuota{},
		&model.PagoCuota{},
		&model.MovimientoFinanciero{},
		&model.MovimientoStock{},
		&model.Requisicion{},
		&model.RequisicionLinea{},
	); err != nil {
		return err
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express:
// the partial index backing the prorrateo retry cron and the sequence for
// purchase numbers.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE SEQUENCE IF NOT EXISTS compras_numero_seq`,
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'movimientos_financieros')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_mov_fin_prorrateo_retry') THEN
		    CREATE INDEX idx_mov_fin_prorrateo_retry
		        ON movimientos_financieros (next_retry_at)
		        WHERE estado_prorrateo = 'pendiente' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/pro-scheduler/internal/config"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

func NewDB(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info("database connected",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.String("tx_isolation", cfg.TxIsolation),
	)

	return db, nil
}

// Migrate creates or updates the schema. The partial index serves the
// overlap query, which only ever reads active appointments. The exclusion
// constraint backs the per-professional no-overlap rule at the database
// level; unassigned appointments (NULL professional) never conflict.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Professional{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	if err := db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_appointments_active_range
        ON appointments (start_time, end_time)
        WHERE status IN ('pending', 'confirmed')
    `).Error; err != nil {
		return fmt.Errorf("creating active range index: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enabling btree_gist: %w", err)
	}

	if err := db.Exec(`
        DO $$
        BEGIN
            IF NOT EXISTS (
                SELECT 1 FROM pg_constraint
                WHERE conname = 'appointments_professional_no_overlap'
            ) THEN
                ALTER TABLE appointments
                ADD CONSTRAINT appointments_professional_no_overlap
                EXCLUDE USING gist (
                    professional_id WITH =,
                    tstzrange(start_time, end_time, '[)') WITH &&
                ) WHERE (status IN ('pending', 'confirmed'));
            END IF;
        END
        $$;
    `).Error; err != nil {
		return fmt.Errorf("creating professional overlap constraint: %w", err)
	}

	log.Info("database migrated")
	return nil
}

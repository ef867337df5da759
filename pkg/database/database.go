package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glucotrack/glucotrack/internal/config"
	"github.com/glucotrack/glucotrack/internal/domain/doctor"
	"github.com/glucotrack/glucotrack/internal/domain/patient"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:          true,
		TranslateError:       true,
		DisableAutomaticPing: false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	models := []any{
		&doctor.Doctor{},
		&patient.Patient{},
		&patient.Prediction{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := ensureCascades(db); err != nil {
		return fmt.Errorf("creating foreign keys: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// ensureCascades installs the ownership foreign keys with ON DELETE CASCADE:
// removing a doctor removes their patients, removing a patient removes its
// predictions. The constraint must hold even though account deletion has no
// endpoint today.
func ensureCascades(db *gorm.DB) error {
	constraints := []struct {
		name  string
		query string
	}{
		{
			name: "fk_patients_doctor",
			query: `ALTER TABLE patients
				ADD CONSTRAINT fk_patients_doctor
				FOREIGN KEY (doctor_id) REFERENCES doctors(id) ON DELETE CASCADE`,
		},
		{
			name: "fk_predictions_patient",
			query: `ALTER TABLE predictions
				ADD CONSTRAINT fk_predictions_patient
				FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE`,
		},
	}

	for _, c := range constraints {
		var exists bool
		err := db.Raw(
			`SELECT EXISTS (SELECT 1 FROM information_schema.table_constraints WHERE constraint_name = ?)`,
			c.name,
		).Scan(&exists).Error
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := db.Exec(c.query).Error; err != nil {
			return err
		}
	}

	return nil
}

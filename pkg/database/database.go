package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/config"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/dossier"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      logger.Gorm(log, cfg.SlowQueryThreshold),
		PrepareStmt: true,
		// appointments.patient_id carries no foreign key so the detach delete policy can leave it dangling.
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
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

// Models lists every table the application reads or writes.
func Models() []any {
	models := []any{
		&patient.Patient{},
		&appointment.Appointment{},
		&domain.AuditLog{},
	}
	return append(models, dossier.Models()...)
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	// gen_random_uuid() is built in from PostgreSQL 13; older servers need pgcrypto.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		log.Warn("could not enable pgcrypto", zap.Error(err))
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

type index struct {
	name  string
	query string
	// optional indexes depend on an extension the role may not be allowed to create.
	optional bool
}

var indexes = []index{
	{
		name:  "idx_appointments_calendar",
		query: `CREATE INDEX IF NOT EXISTS idx_appointments_calendar ON appointments (date_heure, statut)`,
	},
	{
		name:  "idx_appointments_patient_start",
		query: `CREATE INDEX IF NOT EXISTS idx_appointments_patient_start ON appointments (patient_id, date_heure)`,
	},
	{
		name:  "idx_patients_name",
		query: `CREATE INDEX IF NOT EXISTS idx_patients_name ON patients (nom, prenom)`,
	},
	// Patient search: trigram index on "nom prenom"
	{
		name:     "idx_patients_name_trgm",
		query:    `CREATE INDEX IF NOT EXISTS idx_patients_name_trgm ON patients USING gin ((nom || ' ' || prenom) gin_trgm_ops)`,
		optional: true,
	},
	{
		name:  "idx_audit_logs_resource",
		query: `CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs (resource_type, resource_id, occurred_at)`,
	},
}

func createIndexes(db *gorm.DB, log *zap.Logger) error {
	trgm := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error == nil

	for _, idx := range indexes {
		if idx.optional && !trgm {
			log.Warn("skipping index, pg_trgm unavailable", zap.String("index", idx.name))
			continue
		}
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("%s: %w", idx.name, err)
		}
	}
	return nil
}

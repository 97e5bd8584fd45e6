package main

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/cabinet/config"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore/gormstore"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore/memstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds everything a command needs. close releases it in reverse order.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	store   rowstore.Client
	metrics *metrics.Collector

	audit        *service.AuditService
	appointments *service.AppointmentService
	patients     *service.PatientService
	dossiers     *service.DossierService
	auth         *service.AuthService
}

func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if version != "dev" {
		cfg.App.Version = version
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, metrics: metrics.NewCollector("cabinet")}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn("using the in-memory store; data is lost on restart")
		a.store = memstore.New()
	default:
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		a.db = db
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(db, log); err != nil {
				a.close()
				return nil, err
			}
		}
		a.store = gormstore.New(db, a.metrics)
	}

	apptRepo := repository.NewAppointmentRepository(a.store, log)
	patientRepo := repository.NewPatientRepository(a.store)

	a.audit = service.NewAuditService(repository.NewAuditRepository(a.store), log, a.metrics)
	a.appointments = service.NewAppointmentService(apptRepo, patientRepo, a.audit, a.metrics, log, cfg.Scheduling.Location)
	a.patients = service.NewPatientService(patientRepo, apptRepo, a.audit, a.metrics, log, cfg.Scheduling.PatientDeletePolicy)
	a.dossiers = service.NewDossierService(repository.NewDossierRepository(a.store), patientRepo, a.audit, log)
	if cfg.Auth.Enabled {
		a.auth = service.NewAuthService(cfg.Auth, auth.NewJWTManager(cfg.JWT), a.audit, log)
	}

	log.Info("cabinet initialised",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Environment),
		zap.String("store", cfg.Store.Driver),
		zap.String("timezone", cfg.Scheduling.Location.String()),
		zap.String("patient_delete_policy", string(cfg.Scheduling.PatientDeletePolicy)),
	)
	return a, nil
}

// close drains the audit buffer before the store goes away.
func (a *app) close() {
	if a.audit != nil {
		a.audit.Shutdown()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log.Warn("closing database", zap.Error(err))
			}
		}
	}
	_ = a.log.Sync()
}

func requirePostgres(cfg *config.Config) error {
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return fmt.Errorf("STORE_DRIVER=%s has no schema to migrate", cfg.Store.Driver)
	}
	return nil
}

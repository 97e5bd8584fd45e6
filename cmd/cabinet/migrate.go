package main

import (
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if err := requirePostgres(cfg); err != nil {
				return err
			}

			db, err := database.Connect(cfg.Database, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := database.Migrate(db, log); err != nil {
				log.Error("migration failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

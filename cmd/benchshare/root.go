package main

import (
	"database/sql"
	"fmt"

	"benchshare/internal/config"
	"benchshare/internal/database"
	"benchshare/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:          "benchshare",
		Short:        "Share and compare JavaScript performance test cases",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger, err = logging.New(cfg.LogLevel, cfg.Dev)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	pf.String("dsn", "benchshare.db", "sqlite database path")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("dev", false, "development logging")

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newAdminCmd(a))
	return root
}

// openDB opens and migrates the configured database.
func (a *app) openDB() (*sql.DB, error) {
	db, err := database.New(a.cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			a.logger.Info("database migrated", zap.String("dsn", a.cfg.DSN))
			return nil
		},
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/database"
	"github.com/afterus/afterus-backend/internal/logging"
	"github.com/afterus/afterus-backend/internal/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

// options are the persistent flags shared by every command
type options struct {
	configPath string
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// connect opens the database and wires the services on top of it. The
// caller closes the returned DB.
func (o *options) connect(stderr io.Writer) (*services.Services, *database.DB, logrus.FieldLogger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logging.NewWithOutput(cfg.Log, stderr)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	svc, err := services.NewServices(cfg, services.NewPostgresRepositories(db.DB), db, log)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return svc, db, log, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "afterus",
		Short: "Operate the After Us backend",
		Long: `Admin tooling for the After Us backend.

Quick Start:
  afterus migrate up                        # apply database migrations
  afterus create-user --email a@b.c --name Sam --password '...'
  afterus analyze chat.txt --user Sam       # offline insight report`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a config file (default: search ., ./config, ~/.afterus)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newMigrateCmd(opts),
		newCreateUserCmd(opts),
		newSetPasswordCmd(opts),
		newMaintenanceCmd(opts),
		newAuditCmd(opts),
		newAnalyzeCmd(),
	)
	return root
}

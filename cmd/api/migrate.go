package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayursutra/clinic-api/internal/config"
	"github.com/ayursutra/clinic-api/internal/repository/postgres"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE:  runMigrateUp,
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and when they were applied",
			Args:  cobra.NoArgs,
			RunE:  runMigrateStatus,
		},
	)
	return cmd
}

func openMigrator(cmd *cobra.Command) (*postgres.Migrator, func(), error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return nil, nil, fmt.Errorf("migrations require the postgres storage driver, got %q", cfg.Storage.Driver)
	}

	db, err := postgres.NewDB(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewMigrator(db), func() { db.Close() }, nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	m, closeDB, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := m.Up(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	m, closeDB, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	statuses, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range statuses {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "%03d  %-40s %s\n", s.Version, s.Name, applied)
	}
	return nil
}

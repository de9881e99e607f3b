package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ayursutra/clinic-api/internal/config"
	"github.com/ayursutra/clinic-api/pkg/logger"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "clinic-api",
		Short:         "AyurSutra practitioner and therapy scheduling API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yml or ./config/config.yml)")
	root.AddCommand(newServeCommand(), newMigrateCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	l := logger.New(logger.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})
	return cfg, l, nil
}

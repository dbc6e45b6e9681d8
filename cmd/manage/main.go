package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/config"
	"github.com/noah-isme/oppia-go-api/internal/database"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "manage",
		Short:        "Oppia management commands",
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCommand(), newUserProfileFixCommand())
	return root
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
			return nil
		},
	}
}

func openDatabase() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load configuration: %w", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func commandLogger(cmd *cobra.Command) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
}

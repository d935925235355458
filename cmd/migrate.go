package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"convo/internal/pkg/storefactory"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long:  `Create tables, foreign keys and indexes for the configured database driver, then exit.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	flags := migrateCmd.Flags()
	flags.String("db-driver", "sqlite", "database driver (sqlite/postgres/mongo)")
	flags.String("db-dsn", "convo.db", "database DSN")
	flags.Duration("timeout", 2*time.Minute, "migration timeout")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	_ = viper.BindPFlag("database.driver", flags.Lookup("db-driver"))
	_ = viper.BindPFlag("database.dsn", flags.Lookup("db-dsn"))

	cfg := GetConfig()
	cfg.Database.Driver = viper.GetString("database.driver")
	cfg.Database.DSN = viper.GetString("database.dsn")

	timeout, _ := flags.GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := storefactory.NewStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close(context.Background())

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}

	log.Info().Str("driver", cfg.Database.Driver).Msg("migration completed")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/jam/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the template when missing, then initializes the database and runs migrations.
//
// --client-id stores the Spotify client id in the config file. --rollback undoes the latest migration instead.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	if clientID := cmd.String("client-id"); clientID != "" {
		config.Credentials.Spotify.ClientID = clientID
		if err := shared.SaveConfig(configPath, config); err != nil {
			return err
		}
		r.logger.Info("client id saved", "path", configPath)
	}

	if err := shared.ApplyEnv(config); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		return r.writePlain("✓ Rolled back the latest migration of %s\n", config.Database.Path)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s\n", config.Database.Path)
	if err := config.Validate(); err != nil {
		r.writePlainln("Next steps:")
		r.writePlain("1. Register an app at https://developer.spotify.com/dashboard\n")
		r.writePlain("2. Set credentials.spotify.client_id in %s (or JAM_CLIENT_ID)\n", configPath)
		r.writePlain("3. Add %s to the app's redirect URIs\n", config.Credentials.Spotify.RedirectURI)
		return nil
	}
	r.writePlain("\nRun 'jam auth login' to authorize.\n")
	return nil
}

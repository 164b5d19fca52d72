package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"tuneport/internal/shared"
)

// Setup initializes the configuration file and database, running migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		if err := r.reloadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if err := r.reloadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// Providers prints the configured providers and whether credentials are set.
func (r *Runner) Providers(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	names := make([]string, 0, len(r.config.Providers))
	for name := range r.config.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	if cmd.Bool("json") {
		type providerStatus struct {
			Name          string `json:"name"`
			BaseURL       string `json:"base_url"`
			HasCredential bool   `json:"has_credential"`
		}
		statuses := make([]providerStatus, 0, len(names))
		for _, name := range names {
			pc := r.config.Providers[name]
			statuses = append(statuses, providerStatus{Name: name, BaseURL: pc.BaseURL, HasCredential: pc.Token != ""})
		}
		return r.writeJSON(statuses, true)
	}

	for _, name := range names {
		pc := r.config.Providers[name]
		status := "missing credentials"
		if pc.Token != "" {
			status = "ready"
		}
		r.writePlain("%-10s %-14s %s\n", name, status, pc.BaseURL)
	}
	return nil
}

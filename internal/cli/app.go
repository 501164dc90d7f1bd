// Package cli implements the administrative subcommands of the circulation
// binary. Each command opens the database the same way the server does.
package cli

import (
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entrypoint"
)

// openApp loads the environment configuration with the database at dbPath.
func openApp(dbPath string) (*entrypoint.App, error) {
	cfg := config.NewConfig()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return entrypoint.NewApp(cfg)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/duetapp/duet/internal/app"
	"github.com/duetapp/duet/internal/config"
	"github.com/duetapp/duet/internal/logger"
)

// openApp loads configuration from the environment and wires the services
// the same way the server does.
func openApp() (*app.App, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, cfg.AppEnv)

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/readroomapp/readroom-server/internal/config"
	"github.com/readroomapp/readroom-server/internal/logger"
)

// ProvideConfig loads and validates the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// ProvideLogger creates the application logger based on configuration.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
		AddSource:   cfg.App.Environment == "development",
	})

	log.Info("starting readroom server",
		"environment", cfg.App.Environment,
		"data_path", cfg.Data.BasePath,
		"port", cfg.Server.Port)

	return log, nil
}

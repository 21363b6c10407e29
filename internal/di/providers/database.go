package providers

import (
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/readroomapp/readroom-server/internal/config"
	"github.com/readroomapp/readroom-server/internal/logger"
	"github.com/readroomapp/readroom-server/internal/store/sqlite"
)

// StoreHandle wraps the SQLite store for lifecycle management.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown closes the database connection.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the SQLite database and runs migrations.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "readroom.db")
	st, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.Info("database ready", "path", dbPath)

	return &StoreHandle{Store: st}, nil
}

package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/readroomapp/readroom-server/internal/config"
	"github.com/readroomapp/readroom-server/internal/media/images"
)

// CoverStorage wraps the on-disk cover image storage.
type CoverStorage struct {
	*images.Storage
}

// ProvideCoverStorage creates the cover image storage directory.
func ProvideCoverStorage(i do.Injector) (*CoverStorage, error) {
	cfg := do.MustInvoke[*config.Config](i)

	storage, err := images.NewStorage(cfg.Data.CoversPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover storage: %w", err)
	}

	return &CoverStorage{Storage: storage}, nil
}

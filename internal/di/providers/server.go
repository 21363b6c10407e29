package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/readroomapp/readroom-server/internal/api"
	"github.com/readroomapp/readroom-server/internal/config"
	"github.com/readroomapp/readroom-server/internal/logger"
	"github.com/readroomapp/readroom-server/internal/service"
)

// HTTPServerHandle wraps the HTTP server for lifecycle management.
type HTTPServerHandle struct {
	server *http.Server
	api    *api.Server
	logger *logger.Logger
}

// Shutdown gracefully stops the HTTP server.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	h.logger.Info("shutting down HTTP server")
	err := h.server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer assembles the API server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	covers := do.MustInvoke[*CoverStorage](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Session: do.MustInvoke[*service.SessionService](i),
		Catalog: do.MustInvoke[*service.CatalogService](i),
		Shelf:   do.MustInvoke[*service.ShelfService](i),
		Library: do.MustInvoke[*service.LibraryService](i),
		Review:  do.MustInvoke[*service.ReviewService](i),
		Genre:   do.MustInvoke[*service.GenreService](i),
		Tag:     do.MustInvoke[*service.TagService](i),
	}

	apiServer := api.NewServer(storeHandle.Store, services, covers.Storage, log.Logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{server: server, api: apiServer, logger: log}, nil
}

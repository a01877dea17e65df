package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rgoncalves/fieldsync/internal/logging"
	"github.com/rgoncalves/fieldsync/internal/server/config"
	"github.com/rgoncalves/fieldsync/internal/server/db"
)

// App ties the configuration, database and HTTP router together.
type App struct {
	config *config.Config
	log    logging.Logger
	server *http.Server
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	gdb, err := db.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	router := NewRouter(gdb, c, log)

	return &App{
		config: c,
		log:    log,
		server: &http.Server{
			Addr:              c.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "server listening", "address", a.config.Address)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.log.Info(ctx, "shutting down")
	return a.server.Shutdown(shutdownCtx)
}

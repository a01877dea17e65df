// Package cli is the interactive surface of the field client: a small REPL
// the technician drives to pick a client/area/point, enter readings, attach
// photos and watch the outbox drain.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/rgoncalves/fieldsync/internal/buildinfo"
	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/client/config"
	"github.com/rgoncalves/fieldsync/internal/client/connectivity"
	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/rgoncalves/fieldsync/internal/client/photo"
	"github.com/rgoncalves/fieldsync/internal/client/services"
	"github.com/rgoncalves/fieldsync/internal/client/storage"
	"github.com/rgoncalves/fieldsync/internal/client/syncer"
	"github.com/rgoncalves/fieldsync/internal/logging"
)

// App wires the client together and carries the REPL session state.
type App struct {
	config  *config.Config
	log     logging.Logger
	repos   *storage.Repositories
	backend backend.Client
	monitor *connectivity.Monitor
	engine  *syncer.Engine

	selection  services.SelectionService
	submission services.SubmissionService
	actionLog  services.ActionLogService
	version    services.VersionService

	userName string
	clientID int64
	areaID   string
	point    *models.CollectionPoint
	catalog  []models.MeasurementType

	reader *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient := backend.NewRESTClient(c.BackendURL)
	monitor := connectivity.NewMonitor(apiClient, log)

	uploader, err := photo.NewS3Uploader(ctx, c.S3)
	if err != nil {
		return nil, fmt.Errorf("error initializing uploader: %w", err)
	}
	pipeline := photo.NewPipeline(uploader, log)
	engine := syncer.New(repos.Outbox, apiClient, pipeline, log)

	return &App{
		config:     c,
		log:        log,
		repos:      repos,
		backend:    apiClient,
		monitor:    monitor,
		engine:     engine,
		selection:  services.NewSelectionService(apiClient, repos.Cache, monitor, log),
		submission: services.NewSubmissionService(repos.Outbox, engine, monitor, log),
		actionLog:  services.NewActionLogService(apiClient, log),
		version:    services.NewVersionService(apiClient, buildinfo.Version, log),
		reader:     bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the background workers and hands control to the REPL. It
// returns when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	go a.monitor.Run(ctx, a.config.OnlineCheckInterval)
	go a.engine.Run(ctx, a.monitor.Subscribe())
	go a.version.Run(ctx)

	a.restoreSelection(ctx)
	a.Root(ctx)
}

func (a *App) close() {
	if err := a.backend.Close(); err != nil {
		a.log.Warn(context.Background(), "error closing backend client", "error", err)
	}
	if err := a.repos.DB.Close(); err != nil {
		a.log.Warn(context.Background(), "error closing database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

// restoreSelection re-applies a recently saved client/area choice so the
// technician resumes at the point list instead of the top of the tree.
func (a *App) restoreSelection(ctx context.Context) {
	state, err := a.selection.LoadSelection(ctx)
	if err != nil || state == nil {
		return
	}
	printlnFn(fmt.Sprintf("Restored selection: client %d, area %s", state.ClientID, state.WorkAreaID))
}

// Package server initializes and runs the photo API server.
// It opens the metadata database, applies migrations, connects the object
// store, wires the services, and starts the HTTP server with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/geophoto/internal/logging"
	"github.com/dmitrijs2005/geophoto/internal/server/config"
	"github.com/dmitrijs2005/geophoto/internal/server/db"
	"github.com/dmitrijs2005/geophoto/internal/server/httpapi"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/geophoto/internal/server/services"
	"github.com/dmitrijs2005/geophoto/internal/server/storage"
	"github.com/dmitrijs2005/geophoto/internal/server/transcode"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	userService  *services.UserService
	photoService *services.PhotoService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	transcoder := transcode.New(cfg.TranscodeMaxDimension, cfg.TranscodeJPEGQuality)

	us := services.NewUserService(database, m, cfg)
	ps := services.NewPhotoService(database, m, store, transcoder, logger)

	return &App{config: cfg, logger: logger, userService: us, photoService: ps}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config, app.logger, app.userService, app.photoService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}

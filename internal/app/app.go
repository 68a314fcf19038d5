// Package app initializes and runs the main application service.
// It configures logging, storage, sessions, and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/artcls/internal/config"
	"github.com/patric-chuzhbe/artcls/internal/db/jsondb"
	"github.com/patric-chuzhbe/artcls/internal/db/memorystorage"
	"github.com/patric-chuzhbe/artcls/internal/db/postgresdb"
	"github.com/patric-chuzhbe/artcls/internal/db/storage"
	"github.com/patric-chuzhbe/artcls/internal/flash"
	"github.com/patric-chuzhbe/artcls/internal/hasher"
	"github.com/patric-chuzhbe/artcls/internal/logger"
	"github.com/patric-chuzhbe/artcls/internal/models"
	"github.com/patric-chuzhbe/artcls/internal/router"
	"github.com/patric-chuzhbe/artcls/internal/service"
	"github.com/patric-chuzhbe/artcls/internal/session"
	"github.com/patric-chuzhbe/artcls/internal/view"
)

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the blog service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - setting up sessions and the flash stash
// - setting up the router and middleware
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	sessionSigningSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.SessionSigningSecretKey)
	if err != nil {
		return nil, err
	}

	views, err := view.New()
	if err != nil {
		return nil, err
	}

	notices := flash.New(app.cfg.SessionCookieName + "_flash")
	sessions := session.New(
		app.cfg.SessionCookieName,
		sessionSigningSecretKey,
		app.cfg.SessionTTL,
		notices,
	)

	app.httpHandler = router.New(
		service.New(app.db, app.db, hasher.New()),
		views,
		notices,
		sessions,
		sessions,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}

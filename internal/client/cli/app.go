// Package cli is the interactive terminal front end for the parcel client:
// a small REPL over the session, verification, order, and notification
// controllers.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/parcel-ng/parcel-client/internal/client/api"
	"github.com/parcel-ng/parcel-client/internal/client/config"
	"github.com/parcel-ng/parcel-client/internal/client/notifications"
	"github.com/parcel-ng/parcel-client/internal/client/orders"
	"github.com/parcel-ng/parcel-client/internal/client/otp"
	"github.com/parcel-ng/parcel-client/internal/client/session"
	"github.com/parcel-ng/parcel-client/internal/client/store"
	"github.com/parcel-ng/parcel-client/internal/client/upload"
	"github.com/parcel-ng/parcel-client/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// App wires the controllers together for one interactive run. Everything
// is constructed explicitly and scoped to the process lifetime; nothing
// here is a package-level singleton.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	apiClient api.Client
	sessions  *session.Store
	verify    *otp.Flow
	orders    *orders.Controller
	notifs    *notifications.Controller
	uploader  *upload.Uploader

	reader *bufio.Reader
	page   int
	Mode   Mode
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault(os.Stderr, slog.LevelWarn)

	db, err := store.Open(ctx, cfg.StoragePath)
	if err != nil {
		logger.Error(ctx, "error initializing local store", "error", err)
		return nil, err
	}

	sessions := session.NewStore(db, logger)
	sessions.Load(ctx)

	apiClient := api.NewRESTClient(cfg.APIBaseURL, cfg.RequestTimeout, sessions)
	repo := store.NewSQLiteRepository(db)

	verify := otp.NewFlow(apiClient, sessions, repo, logger)
	verify.Restore(ctx)

	app := &App{
		config:    cfg,
		log:       logger,
		db:        db,
		apiClient: apiClient,
		sessions:  sessions,
		verify:    verify,
		orders:    orders.NewController(apiClient, logger),
		notifs:    notifications.NewController(apiClient, logger),
		uploader:  upload.NewUploader(cfg.UploadURL, cfg.UploadPreset, cfg.RequestTimeout),
		reader:    bufio.NewReader(os.Stdin),
		page:      1,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	_ = a.apiClient.Close()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	_, ok := a.sessions.CurrentUser()
	return ok
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher probes backend liveness on a ticker and flips
// the displayed mode. It exits when ctx is cancelled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.apiClient.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

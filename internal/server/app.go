// Package server assembles and runs the sessionkeeper server: storage,
// identity and session services, the gRPC endpoint and the metrics listener.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/sessionkeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	identity *services.IdentityService
	sessions *services.SessionService
	metrics  *metrics.Metrics
}

// NewApp opens PostgreSQL, applies migrations and seeds an empty store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pm := repomanager.NewPostgresRepositoryManager()
	if err := pm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	app, err := assemble(ctx, c, logger, db, dbx.NewSQLTransactor(db, nil), pm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.db = db
	return app, nil
}

func assemble(ctx context.Context, c *config.Config, logger logging.Logger, db dbx.DBTX, tx dbx.Transactor, m repomanager.RepositoryManager) (*App, error) {
	identity := services.NewIdentityService(db, tx, m, c, logger)

	n, err := identity.Seed(ctx, c.InitUserPassword)
	if err != nil {
		return nil, fmt.Errorf("seed error: %w", err)
	}
	if n > 0 {
		logger.Info(ctx, "Seeded initial accounts", "count", n)
	}

	return &App{
		config:   c,
		logger:   logger,
		identity: identity,
		sessions: services.NewSessionService(identity, c, logger),
		metrics:  metrics.New(),
	}, nil
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or one of
// the listeners fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions, app.identity, app.metrics)
		return s.Run(ctx)
	})

	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			return app.metrics.Serve(ctx, app.config.MetricsAddr, app.logger)
		})
	}

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}

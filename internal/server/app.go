// Package server wires configuration, storage, services and both transports
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/issuetracker/internal/logging"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/httpapi"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/memstore"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"

	gs "github.com/dmitrijs2005/issuetracker/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.Server
	grpcServer  *gs.GRPCServer
}

// OpenStore returns the RepositoryManager selected by c.StoreMode with its
// schema migrated.
func OpenStore(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	var m repomanager.RepositoryManager

	switch c.StoreMode {
	case config.StoreMemory:
		m = memstore.NewManager()
	case config.StorePostgres:
		db, err := repomanager.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		m = repomanager.NewPostgresRepositoryManager(db)
	default:
		return nil, fmt.Errorf("unknown store mode %q", c.StoreMode)
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m, err := OpenStore(ctx, c)
	if err != nil {
		return nil, err
	}

	issues := services.NewIssueService(m)
	milestones := services.NewMilestoneService(m)
	users := services.NewUserService(m, c)
	attachments := services.NewAttachmentService(m, c)

	httpServer := httpapi.NewServer(
		httpapi.Config{Addr: c.EndpointAddrHTTP, ShutdownTimeout: c.ShutdownTimeout},
		logger,
		httpapi.Services{Issues: issues, Milestones: milestones, Users: users, Attachments: attachments},
		c.AccessTokenValidityDuration,
		httpapi.ReadinessCheck{Name: "store", Check: m.Ping},
	)

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger,
		gs.Services{Issues: issues, Milestones: milestones, Users: users, Attachments: attachments})

	return &App{
		config:      c,
		logger:      logger,
		repomanager: m,
		httpServer:  httpServer,
		grpcServer:  grpcServer,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives, or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreMode)

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	if app.config.EndpointAddrHTTP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.httpServer.Run(ctx); err != nil {
				app.logger.Error(ctx, "http server failed", "error", err)
				cancelFunc()
			}
		}()
	}

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.grpcServer.Run(ctx); err != nil {
				app.logger.Error(ctx, "grpc server failed", "error", err)
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}

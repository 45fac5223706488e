// Package server assembles the BlogKeeper server: it selects the storage
// backend, runs migrations, builds the services and serves the HTTP API
// until a shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

var (
	openPostgres = repomanager.OpenPostgres

	newS3ImageStore = func(ctx context.Context, c *config.Config) (services.ImageStore, error) {
		return services.NewS3ImageStore(ctx, c)
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	handler     http.Handler

	mu       sync.Mutex
	listener net.Listener
}

// NewApp validates c and builds every component of the server.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	var (
		rm     repomanager.RepositoryManager
		images services.ImageStore
		err    error
	)
	if c.UsesMemoryStore() {
		logger.Warn(ctx, "using in-memory store, data is lost on exit")
		rm = repomanager.NewInMemoryRepositoryManager()
		images = services.NewMemoryImageStore("memory://" + c.S3Bucket)
	} else {
		rm, err = openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		images, err = newS3ImageStore(ctx, c)
		if err != nil {
			_ = rm.Close()
			return nil, fmt.Errorf("image store init error: %w", err)
		}
	}

	hasher, err := auth.NewBcryptHasher(c.PasswordHashCost)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("config error: %w", err)
	}
	issuer, err := auth.NewTokenIssuer([]byte(c.SecretKey))
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("config error: %w", err)
	}

	accounts := services.NewAccountService(rm, hasher, images, c.StoreTimeout, logger)
	sessions := services.NewSessionRegistry(rm, c.StoreTimeout)
	authService := services.NewAuthService(accounts, sessions, issuer, logger)
	posts := services.NewPostService(rm, images, c.S3ImagePrefix, c.StoreTimeout, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api := httpapi.NewServer(authService, accounts, posts, logger, httpapi.Options{
		MaxImageSize:       c.MaxImageSize,
		CORSAllowedOrigins: c.CORSAllowedOrigins,
		Registry:           registry,
	})

	return &App{config: c, logger: logger, repomanager: rm, handler: api.Routes()}, nil
}

// initSignalHandler derives a context that is cancelled on SIGINT, SIGTERM
// or SIGQUIT. stop releases the signal registration.
func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Addr returns the bound address once the server is listening.
func (app *App) Addr() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.listener == nil {
		return ""
	}
	return app.listener.Addr().String()
}

// Run migrates the store and serves HTTP until ctx is cancelled or a
// termination signal arrives, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	defer func() {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(ctx, "store close failed", "error", err)
		}
	}()

	if err := app.repomanager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	ln, err := net.Listen("tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		return fmt.Errorf("listen error: %w", err)
	}
	app.mu.Lock()
	app.listener = ln
	app.mu.Unlock()

	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var (
		wg       sync.WaitGroup
		serveErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.logger.Info(ctx, "HTTP server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
	}
	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return serveErr
}

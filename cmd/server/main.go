// Command server runs the feedsite HTTP API and realtime feed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"feedsite/internal/bootstrap"
	"feedsite/internal/config"
	"feedsite/internal/middleware"
	"feedsite/internal/server"
)

// @title feedsite API
// @version 1.0
// @description Social feed API: paged posts with authors and images, registration, authorization and image upload.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the X-Auth-Token value.

func main() {
	shutdownTimeout := flag.Duration("shutdown-timeout", 10*time.Second, "grace period for open requests and feed sockets")
	flag.Parse()

	if err := run(*shutdownTimeout); err != nil {
		log.Fatal(err)
	}
}

func run(shutdownTimeout time.Duration) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{EnsureSecretQuestions: true})
	if err != nil {
		return fmt.Errorf("init runtime: %w", err)
	}

	// The server owns the DB and Redis connections from here on.
	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis)
	if err != nil {
		_ = rt.Close(context.Background())
		return fmt.Errorf("create server: %w", err)
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- srv.Start() }()

	select {
	case err := <-listenErr:
		if err != nil {
			_ = rt.Close(context.Background())
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	middleware.Logger.Info("shutting down", slog.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(srv.Shutdown(shutdownCtx), rt.FlushTraces(shutdownCtx))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"pox-exporter/client"
	"pox-exporter/config"
	"pox-exporter/handlers"
	"pox-exporter/logger"
	"pox-exporter/pox"
	"pox-exporter/repository"
	"pox-exporter/routers"
)

const shutdownTimeout = 5 * time.Second

func main() {
	app := &cli.App{
		Name:  "pox-exporter",
		Usage: "Prometheus exporter for Stacks PoX cycle and stacker registration status",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "optional config file; environment variables take precedence",
				EnvVars: []string{"POX_EXPORTER_CONFIG"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pox-exporter:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// Load config
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Logger.Sync()

	logger.Logger.Info("Starting Stacks PoX exporter",
		zap.Int("port", cfg.Port),
		zap.String("pox_url", cfg.NodeURL+"/v2/pox"))
	if cfg.RegistrationEnabled() {
		logger.Logger.Info("Monitoring stacker addresses for registration status",
			zap.Int("addresses", len(cfg.StackerAddresses)),
			zap.String("api_url", cfg.StackerAPIURL))
	} else {
		logger.Logger.Info("No STACKER_ADDRESSES configured - registration checking disabled")
	}

	// Initialize repository over the upstream APIs
	repo := repository.NewPoxRepository(*cfg, client.NewHTTPClient(client.DefaultTimeout))

	exporter := pox.NewExporter(*cfg, repo)

	h := handlers.NewHandler(exporter)

	// Setup router
	r := mux.NewRouter()
	routers.RegisterRoutes(r, h)

	// HTTP Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Logger.Info("Exporter listening", zap.String("addr", srv.Addr))

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case sig := <-sigCh:
		logger.Logger.Info("Shutdown signal received, exiting...", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Warn("Graceful shutdown failed", zap.Error(err))
		return srv.Close()
	}
	return nil
}

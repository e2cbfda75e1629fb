// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the Connect import API that provisions Adobe Connect
// meeting rooms and users from CSV batches.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uninett/connect-import-service/internal/config"
	"github.com/uninett/connect-import-service/internal/infrastructure/dataporten"
	"github.com/uninett/connect-import-service/internal/logging"
	"github.com/uninett/connect-import-service/internal/service"
	"github.com/uninett/connect-import-service/pkg/utils"
)

func main() {
	flags := parseFlags()

	logging.InitStructureLogConfig()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error loading configuration")
		os.Exit(1)
	}
	flags.apply(cfg)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry")
		os.Exit(1)
	}

	events, closeEvents := setupEvents(cfg.NATS)

	provisioningService := service.NewProvisioningService(
		setupConnect(cfg.Connect),
		events,
		service.ServiceConfig{
			SharedFolderID: cfg.Connect.SharedFolderID,
			ServiceURL:     cfg.Connect.ServiceURL,
		},
	)

	api := NewImportAPI(provisioningService, cfg.Server.BasePath)
	verifier := dataporten.NewVerifier(cfg.Dataporten.ClientID, cfg.Dataporten.UserIDPrefix)

	httpServer := &http.Server{
		Addr:              listenAddr(cfg.Server),
		Handler:           newRouter(cfg.Server, api, verifier),
		ReadHeaderTimeout: 3 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.With("addr", httpServer.Addr, "base_path", cfg.Server.BasePath).Info("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Blocks until SIGINT or SIGTERM is received, or the listener fails.
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		if err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
		closeEvents()
		return errors.Join(err, otelShutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		slog.With(logging.ErrKey, err).Error("server stopped with error")
		os.Exit(1)
	}
	slog.Info("graceful shutdown complete")
}

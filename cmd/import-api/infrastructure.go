// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/uninett/connect-import-service/internal/config"
	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/infrastructure/connect"
	"github.com/uninett/connect-import-service/internal/infrastructure/messaging"
	"github.com/uninett/connect-import-service/internal/logging"
)

// setupConnect creates the factory that hands out one Connect client per
// request. Outgoing calls are traced.
func setupConnect(cfg config.ConnectConfig) *connect.Factory {
	return connect.NewFactory(connect.Config{
		BaseURL:   cfg.BaseURL,
		Login:     cfg.Login,
		Password:  cfg.Password,
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, connect.BreakerConfig(cfg.Breaker))
}

// setupEvents returns the provisioning event sender and a function that
// flushes it on shutdown. Without a NATS URL, events are dropped.
func setupEvents(cfg config.NATSConfig) (domain.ProvisioningEventSender, func()) {
	if cfg.URL == "" {
		slog.Info("NATS_URL not set, provisioning events are disabled")
		return messaging.NoopPublisher{}, func() {}
	}

	nc, err := messaging.Connect(cfg.URL, cfg.Timeout)
	if err != nil {
		slog.With(logging.ErrKey, err, "url", cfg.URL).Warn("error connecting to NATS, provisioning events are disabled")
		return messaging.NoopPublisher{}, func() {}
	}
	slog.With("url", cfg.URL).Info("publishing provisioning events to NATS")

	return messaging.NewEventPublisher(nc), func() {
		if err := nc.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}
}

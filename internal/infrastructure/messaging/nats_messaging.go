// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
	"github.com/uninett/connect-import-service/internal/logging"
)

// INatsConn is the part of a NATS connection the publisher needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// EventPublisher publishes provisioning events to NATS.
type EventPublisher struct {
	NatsConn INatsConn
}

// Ensure that EventPublisher implements domain.ProvisioningEventSender
var _ domain.ProvisioningEventSender = (*EventPublisher)(nil)

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(natsConn INatsConn) *EventPublisher {
	return &EventPublisher{
		NatsConn: natsConn,
	}
}

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(url string, timeout time.Duration) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("connect-import-service"),
		nats.Timeout(timeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("disconnected from NATS", logging.ErrKey, err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("reconnected to NATS", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// publish sends data to subject. A disconnected connection is not an error;
// events are best effort.
func (m *EventPublisher) publish(ctx context.Context, subject string, data []byte) error {
	if !m.NatsConn.IsConnected() {
		slog.WarnContext(ctx, "NATS not connected, dropping event", "subject", subject)
		return nil
	}
	if err := m.NatsConn.Publish(subject, data); err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

func (m *EventPublisher) sendJSON(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event", logging.ErrKey, err, "subject", subject)
		return err
	}
	return m.publish(ctx, subject, data)
}

// SendRoomProvisioned publishes a room resolution event.
func (m *EventPublisher) SendRoomProvisioned(ctx context.Context, msg models.RoomProvisionedMessage) error {
	return m.sendJSON(ctx, models.RoomProvisionedSubject, msg)
}

// SendUserProvisioned publishes a user resolution event.
func (m *EventPublisher) SendUserProvisioned(ctx context.Context, msg models.UserProvisionedMessage) error {
	return m.sendJSON(ctx, models.UserProvisionedSubject, msg)
}

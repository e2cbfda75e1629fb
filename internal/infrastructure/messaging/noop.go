// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
)

// NoopPublisher discards events. It is used when no NATS URL is configured.
type NoopPublisher struct{}

var _ domain.ProvisioningEventSender = NoopPublisher{}

// SendRoomProvisioned does nothing.
func (NoopPublisher) SendRoomProvisioned(context.Context, models.RoomProvisionedMessage) error {
	return nil
}

// SendUserProvisioned does nothing.
func (NoopPublisher) SendUserProvisioned(context.Context, models.UserProvisionedMessage) error {
	return nil
}

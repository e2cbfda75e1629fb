// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/uninett/connect-import-service/internal/domain/models"
)

// ProvisioningEventSender publishes audit events about provisioned rooms and users.
// Publishing is best effort; a failure never aborts a batch.
type ProvisioningEventSender interface {
	SendRoomProvisioned(ctx context.Context, msg models.RoomProvisionedMessage) error
	SendUserProvisioned(ctx context.Context, msg models.UserProvisionedMessage) error
}

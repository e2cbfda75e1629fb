// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/uninett/connect-import-service/internal/domain/models"
)

// MockProvisioningEventSender implements ProvisioningEventSender for testing
type MockProvisioningEventSender struct {
	mock.Mock
}

func (m *MockProvisioningEventSender) SendRoomProvisioned(ctx context.Context, msg models.RoomProvisionedMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockProvisioningEventSender) SendUserProvisioned(ctx context.Context, msg models.UserProvisionedMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

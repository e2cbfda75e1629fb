// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
)

// MockConnectClient implements ConnectClient for testing
type MockConnectClient struct {
	mock.Mock
}

func (m *MockConnectClient) CommonInfo(ctx context.Context) (*models.CommonInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommonInfo), args.Error(1)
}

func (m *MockConnectClient) SearchScos(ctx context.Context, search models.ScoSearch) ([]models.Sco, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sco), args.Error(1)
}

func (m *MockConnectClient) ExpandedContents(ctx context.Context, scoID string, scoType models.ScoType) ([]models.Sco, error) {
	args := m.Called(ctx, scoID, scoType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sco), args.Error(1)
}

func (m *MockConnectClient) CreateSco(ctx context.Context, update models.ScoUpdate) (*models.Sco, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sco), args.Error(1)
}

func (m *MockConnectClient) FindPrincipal(ctx context.Context, login string) (*models.Principal, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockConnectClient) CreatePrincipal(ctx context.Context, create models.PrincipalCreate) (*models.Principal, error) {
	args := m.Called(ctx, create)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockConnectClient) UpdatePermission(ctx context.Context, principalID, aclID, permissionID string) error {
	args := m.Called(ctx, principalID, aclID, permissionID)
	return args.Error(0)
}

func (m *MockConnectClient) Session() string {
	args := m.Called()
	return args.String(0)
}

// MockConnectClientFactory implements ConnectClientFactory for testing
type MockConnectClientFactory struct {
	mock.Mock
}

func (m *MockConnectClientFactory) NewClient(session string) domain.ConnectClient {
	args := m.Called(session)
	return args.Get(0).(domain.ConnectClient)
}

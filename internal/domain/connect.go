// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/uninett/connect-import-service/internal/domain/models"
)

// ConnectClient is a session-holding client for the Adobe Connect web services.
// Implementations issue one request at a time and are not safe for concurrent use.
type ConnectClient interface {
	// CommonInfo returns server information; it does not need a session.
	CommonInfo(ctx context.Context) (*models.CommonInfo, error)

	// SearchScos runs a partial-match name search. Results keep server order.
	SearchScos(ctx context.Context, search models.ScoSearch) ([]models.Sco, error)

	// ExpandedContents lists the descendants of a folder filtered by type.
	ExpandedContents(ctx context.Context, scoID string, scoType models.ScoType) ([]models.Sco, error)

	// CreateSco creates a folder or meeting and returns the new SCO.
	CreateSco(ctx context.Context, update models.ScoUpdate) (*models.Sco, error)

	// FindPrincipal looks up a principal by exact login; nil when absent.
	FindPrincipal(ctx context.Context, login string) (*models.Principal, error)

	// CreatePrincipal creates a user account and returns it.
	CreatePrincipal(ctx context.Context, create models.PrincipalCreate) (*models.Principal, error)

	// UpdatePermission grants permissionID on aclID to principalID.
	UpdatePermission(ctx context.Context, principalID, aclID, permissionID string) error

	// Session returns the cached session token, or "" before the first login.
	Session() string
}

// ConnectClientFactory hands out one ConnectClient per batch. A non-empty
// session is reused instead of logging in again.
type ConnectClientFactory interface {
	NewClient(session string) ConnectClient
}

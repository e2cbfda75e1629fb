// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
	"github.com/uninett/connect-import-service/internal/logging"
	"github.com/uninett/connect-import-service/internal/metrics"
	"github.com/uninett/connect-import-service/pkg/constants"
	"github.com/uninett/connect-import-service/pkg/utils"
)

// principalNames returns the first and last name for a new principal. Missing
// names default to the local part of the login.
func principalNames(req models.UserRequest) (string, string, error) {
	login := strings.TrimSpace(req.Login)
	local, _, _ := strings.Cut(login, "@")
	local = utils.CoalesceString(local, login)

	first := utils.CoalesceString(req.FirstName, local)
	last := utils.CoalesceString(req.LastName, local)

	if n := utf8.RuneCountInString(first) + utf8.RuneCountInString(last); n > constants.MaxPrincipalNameLength {
		return "", "", domain.NewValidationError(fmt.Sprintf(
			"name of user %q is %d characters, at most %d are allowed for first and last name combined",
			login, n, constants.MaxPrincipalNameLength))
	}
	return first, last, nil
}

// resolveOrCreateUser returns the principal with the given login, creating it
// with a random password when it does not exist.
func (b *batch) resolveOrCreateUser(ctx context.Context, req models.UserRequest) (*models.UserRecord, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, domain.NewValidationError("user entry without login", domain.ErrMalformedBatch)
	}
	if known, ok := b.users[login]; ok {
		known.Autocreated = false
		return &known, nil
	}

	principal, err := b.client.FindPrincipal(ctx, login)
	if err != nil {
		slog.ErrorContext(ctx, "error looking up user", logging.ErrKey, err, "login", login)
		return nil, err
	}
	if principal != nil {
		user := models.UserRecord{ID: principal.ID, Username: utils.CoalesceString(principal.Login, login)}
		b.users[login] = user
		metrics.UsersProvisioned.WithLabelValues(metrics.ProvisionOutcome(false)).Inc()
		return &user, nil
	}

	// Names only matter for new principals; existing ones keep theirs.
	first, last, err := principalNames(req)
	if err != nil {
		return nil, err
	}

	password, err := utils.RandomPassword()
	if err != nil {
		slog.ErrorContext(ctx, "error generating password", logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to generate password", err)
	}

	principal, err = b.client.CreatePrincipal(ctx, models.PrincipalCreate{
		Login:     login,
		FirstName: first,
		LastName:  last,
		Password:  password,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error creating user", logging.ErrKey, err, "login", login)
		return nil, provisioningFailure(fmt.Sprintf("failed to create user %q", login), err)
	}

	user := models.UserRecord{ID: principal.ID, Username: utils.CoalesceString(principal.Login, login), Autocreated: true}
	b.users[login] = user
	metrics.UsersProvisioned.WithLabelValues(metrics.ProvisionOutcome(true)).Inc()
	slog.InfoContext(ctx, "created user", "login", login, "principal_id", principal.ID)
	return &user, nil
}

// grantHostAndManager grants host on the room and manage on its folder.
// Failures are logged and reported as false.
func (b *batch) grantHostAndManager(ctx context.Context, roomID, folderID, userID string) (host, manager bool) {
	host = b.grant(ctx, userID, roomID, models.PermissionHost)
	if folderID == "" {
		slog.WarnContext(ctx, "room has no folder, skipping manage grant", "room_id", roomID, "user_id", userID)
		metrics.PermissionGrantFailures.WithLabelValues(models.PermissionManage).Inc()
		return host, false
	}
	manager = b.grant(ctx, userID, folderID, models.PermissionManage)
	return host, manager
}

func (b *batch) grant(ctx context.Context, principalID, aclID, permission string) bool {
	if err := b.client.UpdatePermission(ctx, principalID, aclID, permission); err != nil {
		slog.WarnContext(ctx, "permission grant failed", logging.ErrKey, err,
			"permission", permission, "acl_id", aclID, "principal_id", principalID)
		metrics.PermissionGrantFailures.WithLabelValues(permission).Inc()
		return false
	}
	return true
}

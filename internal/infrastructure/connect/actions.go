// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package connect

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
)

// Connect action names
const (
	ActionCommonInfo          = "common-info"
	ActionScoSearchByField    = "sco-search-by-field"
	ActionScoExpandedContents = "sco-expanded-contents"
	ActionScoUpdate           = "sco-update"
	ActionPrincipalList       = "principal-list"
	ActionPrincipalUpdate     = "principal-update"
	ActionPermissionsUpdate   = "permissions-update"
)

// CommonInfo returns server information. It does not require a session.
func (c *Client) CommonInfo(ctx context.Context) (*models.CommonInfo, error) {
	resp, err := c.Call(ctx, ActionCommonInfo, nil, false)
	if err != nil {
		return nil, err
	}
	info := &models.CommonInfo{}
	if resp.Common != nil {
		info.Version = strings.TrimSpace(resp.Common.Version)
	}
	return info, nil
}

// SearchScos runs sco-search-by-field on the name field. Connect matches
// partially, so the result may contain names that merely contain the query.
func (c *Client) SearchScos(ctx context.Context, search models.ScoSearch) ([]models.Sco, error) {
	params := url.Values{}
	params.Set("query", search.Query)
	params.Set("field", "name")
	if search.Type != "" {
		params.Set("filter-type", string(search.Type))
	}
	if search.FolderID != "" {
		params.Set("filter-folder-id", search.FolderID)
	}

	resp, err := c.Call(ctx, ActionScoSearchByField, params, true)
	if isNoData(err) {
		return []models.Sco{}, nil
	}
	if err != nil {
		return nil, err
	}
	return scosToModels(resp.SearchResults), nil
}

// ExpandedContents lists all descendants of scoID of the given type, deepest first.
func (c *Client) ExpandedContents(ctx context.Context, scoID string, scoType models.ScoType) ([]models.Sco, error) {
	params := url.Values{}
	params.Set("sco-id", scoID)
	if scoType != "" {
		params.Set("filter-type", string(scoType))
	}
	params.Set("sort-depth", "desc")

	resp, err := c.Call(ctx, ActionScoExpandedContents, params, true)
	if isNoData(err) {
		return []models.Sco{}, nil
	}
	if err != nil {
		return nil, err
	}
	return scosToModels(resp.ExpandedScos), nil
}

// CreateSco creates a folder or meeting with sco-update.
func (c *Client) CreateSco(ctx context.Context, update models.ScoUpdate) (*models.Sco, error) {
	params := url.Values{}
	params.Set("type", string(update.Type))
	params.Set("name", update.Name)
	params.Set("folder-id", update.FolderID)
	setIfNotEmpty(params, "description", update.Description)
	setIfNotEmpty(params, "date-begin", update.DateBegin)
	setIfNotEmpty(params, "date-end", update.DateEnd)
	setIfNotEmpty(params, "url-path", update.URLPath)

	resp, err := c.Call(ctx, ActionScoUpdate, params, true)
	if err != nil {
		return nil, err
	}
	if resp.Sco == nil || resp.Sco.ID == "" {
		return nil, domain.NewRemoteAPIError("Connect returned no sco for sco-update", "missing-sco-id")
	}
	sco := resp.Sco.toModel()
	return &sco, nil
}

// FindPrincipal looks up a principal by login. It returns nil when there is none.
func (c *Client) FindPrincipal(ctx context.Context, login string) (*models.Principal, error) {
	params := url.Values{}
	params.Set("filter-login", login)

	resp, err := c.Call(ctx, ActionPrincipalList, params, true)
	if isNoData(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Principals) == 0 {
		return nil, nil
	}
	principal := resp.Principals[0].toModel()
	return &principal, nil
}

// CreatePrincipal creates a user account without sending any e-mail.
func (c *Client) CreatePrincipal(ctx context.Context, create models.PrincipalCreate) (*models.Principal, error) {
	params := url.Values{}
	params.Set("first-name", create.FirstName)
	params.Set("last-name", create.LastName)
	params.Set("login", create.Login)
	params.Set("password", create.Password)
	params.Set("type", "user")
	params.Set("send-email", "false")
	params.Set("has-children", "0")

	resp, err := c.Call(ctx, ActionPrincipalUpdate, params, true)
	if err != nil {
		return nil, err
	}
	if resp.Principal == nil || resp.Principal.ID == "" {
		return nil, domain.NewRemoteAPIError("Connect returned no principal for principal-update", "missing-principal-id")
	}
	principal := resp.Principal.toModel()
	if principal.Login == "" {
		principal.Login = create.Login
	}
	return &principal, nil
}

// UpdatePermission grants permissionID on aclID to principalID.
func (c *Client) UpdatePermission(ctx context.Context, principalID, aclID, permissionID string) error {
	params := url.Values{}
	params.Set("principal-id", principalID)
	params.Set("acl-id", aclID)
	params.Set("permission-id", permissionID)

	_, err := c.Call(ctx, ActionPermissionsUpdate, params, true)
	return err
}

func setIfNotEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// isNoData reports a no-data status, which list actions use for empty results.
func isNoData(err error) bool {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Type == domain.ErrorTypeRemoteAPI && strings.EqualFold(domainErr.Subcode, StatusNoData)
}

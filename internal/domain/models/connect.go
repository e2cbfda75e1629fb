// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// ScoType is the Connect type of a server content object.
type ScoType string

const (
	// ScoTypeFolder is a folder SCO
	ScoTypeFolder ScoType = "folder"
	// ScoTypeMeeting is a meeting room SCO
	ScoTypeMeeting ScoType = "meeting"
)

// Permission IDs accepted by permissions-update.
const (
	PermissionHost   = "host"
	PermissionManage = "manage"
)

// Sco is a server content object (folder, meeting, ...) as reported by Connect.
type Sco struct {
	ID          string `json:"sco-id"`
	FolderID    string `json:"folder-id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URLPath     string `json:"url-path,omitempty"`
	Depth       int    `json:"depth,omitempty"`
}

// ScoSearch describes a sco-search-by-field query on the name field.
type ScoSearch struct {
	Query string
	Type  ScoType
	// FolderID limits the search to descendants of the folder when set.
	FolderID string
}

// ScoUpdate carries the fields of a sco-update call that creates a new SCO.
type ScoUpdate struct {
	Type        ScoType
	Name        string
	Description string
	FolderID    string
	DateBegin   string
	DateEnd     string
	URLPath     string
}

// Principal is a Connect user or group account.
type Principal struct {
	ID        string
	Login     string
	FirstName string
	LastName  string
}

// PrincipalCreate carries the fields of a principal-update call that creates a user.
type PrincipalCreate struct {
	Login     string
	FirstName string
	LastName  string
	Password  string
}

// CommonInfo is the subset of the common-info action used by the service.
type CommonInfo struct {
	Version string
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"bytes"
	"encoding/json"
)

// UserRecord is the metadata of a user account resolved or created on Connect,
// annotated with the outcome of the permission grants.
type UserRecord struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Autocreated bool   `json:"autocreated"`
	Host        bool   `json:"host"`
	Manager     bool   `json:"manager"`
}

// UserRequest identifies a user to provision. It decodes from either a bare
// login string or an object with optional names.
type UserRequest struct {
	Login     string `json:"login"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UnmarshalJSON accepts "login" or {"login": ..., "first_name": ..., "last_name": ...}.
func (u *UserRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		*u = UserRequest{}
		return json.Unmarshal(trimmed, &u.Login)
	}

	type plain UserRequest
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*u = UserRequest(p)
	return nil
}

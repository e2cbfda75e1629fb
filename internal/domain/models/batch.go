// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// RoomsResult is the outcome of a rooms batch: each room with its pending user logins.
type RoomsResult = RoomSet[string]

// UsersResult is the outcome of a users batch: each room with its provisioned users.
type UsersResult = RoomSet[UserRecord]

// RoomUserPair is one (room key, user login) row of a rooms batch.
type RoomUserPair struct {
	RoomKey   string
	UserLogin string
}

// CSVRows holds the raw rows of a rooms batch. It decodes from either a JSON
// array of string arrays or a string of CSV text.
type CSVRows [][]string

// UnmarshalJSON accepts [["room","user"], ...] or "room,user\n...".
func (r *CSVRows) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		rows, err := ParseCSV(text)
		if err != nil {
			return err
		}
		*r = rows
		return nil
	}

	var rows [][]string
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return err
	}
	*r = rows
	return nil
}

// ParseCSV splits CSV text into rows. Rows may have any number of fields;
// the shape is checked by the caller.
func ParseCSV(text string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	return rows, nil
}

// Pairs converts the rows into room/user pairs. Every row must have exactly two
// fields; the index of the first offending row is reported otherwise.
func (r CSVRows) Pairs() ([]RoomUserPair, error) {
	pairs := make([]RoomUserPair, 0, len(r))
	for i, row := range r {
		if len(row) != 2 {
			return nil, fmt.Errorf("row %d has %d columns, expected 2", i, len(row))
		}
		pairs = append(pairs, RoomUserPair{
			RoomKey:   strings.TrimSpace(row[0]),
			UserLogin: strings.TrimSpace(row[1]),
		})
	}
	return pairs, nil
}

// CreateRoomsRequest is the payload of a rooms batch.
type CreateRoomsRequest struct {
	OrgShortName    string  `json:"user_org_shortname" validate:"required"`
	RoomFolderSco   string  `json:"room_folder_sco" validate:"required"`
	RoomNamePrefix  string  `json:"room_name_prefix" validate:"required"`
	RoomDescription string  `json:"room_description,omitempty"`
	Token           string  `json:"token,omitempty"`
	CSVData         CSVRows `json:"csv_data" validate:"required,min=1"`
}

// CreateUsersRequest is the payload of a users batch, typically the data of a
// previous rooms batch sent back by the caller.
type CreateUsersRequest struct {
	OrgShortName string                `json:"user_org_shortname" validate:"required"`
	Token        string                `json:"token,omitempty"`
	Data         *RoomSet[UserRequest] `json:"data" validate:"required"`
}

// FolderNav is the list of sub-folders of an org folder.
type FolderNav struct {
	Folders []Sco
	Token   string
}

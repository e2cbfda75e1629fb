// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectConstants(t *testing.T) {
	assert.Equal(t, "connect-import.room.provisioned", RoomProvisionedSubject)
	assert.Equal(t, "connect-import.user.provisioned", UserProvisionedSubject)
}

func TestProvisionedMessages_JSON(t *testing.T) {
	tests := []struct {
		name     string
		msg      any
		expected string
	}{
		{
			name: "room provisioned",
			msg: RoomProvisionedMessage{
				Org:     "uninett",
				RoomKey: "A",
				Room:    RoomRecord{ID: "11", FolderID: "10", Name: "Kurs A", URLPath: "https://connect.example.org/kurs-a/", Autocreated: true},
			},
			expected: `{"org":"uninett","room_key":"A","room":{"id":"11","folder_id":"10","name":"Kurs A","description":"","url_path":"https://connect.example.org/kurs-a/","autocreated":true}}`,
		},
		{
			name: "user provisioned",
			msg: UserProvisionedMessage{
				Org:     "uninett",
				RoomKey: "A",
				RoomID:  "11",
				User:    UserRecord{ID: "p1", Username: "jane@uninett.no", Host: true},
			},
			expected: `{"org":"uninett","room_key":"A","room_id":"11","user":{"id":"p1","username":"jane@uninett.no","autocreated":false,"host":true,"manager":false}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

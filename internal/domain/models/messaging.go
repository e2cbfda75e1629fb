// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// NATS subjects that the import service sends messages about.
const (
	// RoomProvisionedSubject is the subject for rooms resolved or created by a rooms batch.
	// The subject is of the form: connect-import.room.provisioned
	RoomProvisionedSubject = "connect-import.room.provisioned"

	// UserProvisionedSubject is the subject for users resolved or created by a users batch.
	// The subject is of the form: connect-import.user.provisioned
	UserProvisionedSubject = "connect-import.user.provisioned"
)

// RoomProvisionedMessage is published once per room of a rooms batch.
type RoomProvisionedMessage struct {
	Org     string     `json:"org"`
	RoomKey string     `json:"room_key"`
	Room    RoomRecord `json:"room"`
}

// UserProvisionedMessage is published once per user of a users batch.
type UserProvisionedMessage struct {
	Org     string     `json:"org"`
	RoomKey string     `json:"room_key"`
	RoomID  string     `json:"room_id"`
	User    UserRecord `json:"user"`
}

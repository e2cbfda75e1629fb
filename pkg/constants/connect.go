// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Room provisioning defaults
const (
	// DefaultRoomDescription is used when a batch carries no room description.
	DefaultRoomDescription = "Autogenerert med tjeneste ConnectImport"

	// RoomPlaceholderBegin and RoomPlaceholderEnd fill the date range Connect
	// requires for a meeting. Scheduling is not used by imported rooms.
	RoomPlaceholderBegin = "2015-07-01T09:00"
	RoomPlaceholderEnd   = "2015-07-01T17:00"
)

// User provisioning limits
const (
	// MaxPrincipalNameLength is the longest combined first and last name
	// Connect accepts for a principal.
	MaxPrincipalNameLength = 60
)

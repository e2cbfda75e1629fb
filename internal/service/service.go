// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// SharedFolderID is the sco-id of the shared meetings root that holds the org folders.
	SharedFolderID string
	// ServiceURL is the public Connect URL that room url-paths are appended to.
	ServiceURL string
}

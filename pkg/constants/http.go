// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// DataportenClientIDHeader carries the client id of the calling application.
	DataportenClientIDHeader string = "X-Dataporten-Clientid"

	// DataportenUserIDSecHeader carries the secondary user ids, e.g. "feide:jane@uninett.no".
	DataportenUserIDSecHeader string = "X-Dataporten-Userid-Sec"

	// DataportenTokenHeader carries the gatekeeper access token.
	DataportenTokenHeader string = "X-Dataporten-Token"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// contextIdentity is the type for the caller identity context key
type contextIdentity string

// IdentityContextID is the context ID for the verified caller identity
const IdentityContextID contextIdentity = "identity"

// Paths of the operational endpoints served outside the API base path.
const (
	LivezPath   = "/livez"
	ReadyzPath  = "/readyz"
	MetricsPath = "/metrics"
)

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package dataporten verifies the identity headers that the Dataporten API
// gatekeeper adds to proxied requests.
package dataporten

import (
	"context"
	"net/http"
	"strings"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/pkg/constants"
)

// Identity is the verified caller as reported by the gatekeeper.
type Identity struct {
	ClientID string
	// UserID is the secondary id without its scheme, e.g. "jane@uninett.no".
	UserID string
	// Org is the first label of the user's realm, e.g. "uninett".
	Org   string
	Token string
}

// Verifier checks gatekeeper headers against the configured client.
type Verifier struct {
	clientID     string
	userIDPrefix string
}

// NewVerifier creates a Verifier. An empty clientID accepts any client.
func NewVerifier(clientID, userIDPrefix string) *Verifier {
	return &Verifier{
		clientID:     clientID,
		userIDPrefix: strings.TrimSuffix(userIDPrefix, ":"),
	}
}

// Verify extracts the caller identity from h.
func (v *Verifier) Verify(h http.Header) (*Identity, error) {
	clientID := strings.TrimSpace(h.Get(constants.DataportenClientIDHeader))
	if clientID == "" {
		return nil, domain.NewUnauthorizedError("request did not pass through the API gatekeeper")
	}
	if v.clientID != "" && clientID != v.clientID {
		return nil, domain.NewUnauthorizedError("unknown client id")
	}

	userID, ok := v.secondaryID(h.Get(constants.DataportenUserIDSecHeader))
	if !ok {
		return nil, domain.NewUnauthorizedError("missing " + v.userIDPrefix + " user id")
	}

	org := OrgFromUserID(userID)
	if org == "" {
		return nil, domain.NewUnauthorizedError("unable to derive organization from user id")
	}

	return &Identity{
		ClientID: clientID,
		UserID:   userID,
		Org:      org,
		Token:    h.Get(constants.DataportenTokenHeader),
	}, nil
}

// secondaryID finds the first comma-separated id with the expected scheme.
func (v *Verifier) secondaryID(header string) (string, bool) {
	scheme := v.userIDPrefix + ":"
	for _, id := range strings.Split(header, ",") {
		id = strings.TrimSpace(id)
		if len(id) > len(scheme) && strings.EqualFold(id[:len(scheme)], scheme) {
			return id[len(scheme):], true
		}
	}
	return "", false
}

// OrgFromUserID returns the first label of the realm of userID, lowercased.
// "jane@uninett.no" yields "uninett".
func OrgFromUserID(userID string) string {
	at := strings.LastIndex(userID, "@")
	if at < 0 || at == len(userID)-1 {
		return ""
	}
	realm := userID[at+1:]
	org, _, _ := strings.Cut(realm, ".")
	return strings.ToLower(org)
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, constants.IdentityContextID, id)
}

// FromContext returns the identity stored by WithIdentity, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(constants.IdentityContextID).(*Identity)
	return id
}

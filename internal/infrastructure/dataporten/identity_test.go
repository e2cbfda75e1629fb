// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package dataporten

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uninett/connect-import-service/internal/domain"
)

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name        string
		clientID    string
		header      http.Header
		expectedOrg string
		expectedErr bool
	}{
		{
			name:     "valid feide user",
			clientID: "client-1",
			header: headers(
				"X-Dataporten-Clientid", "client-1",
				"X-Dataporten-Userid-Sec", "feide:jane@uninett.no",
				"X-Dataporten-Token", "tok",
			),
			expectedOrg: "uninett",
		},
		{
			name:     "feide id among several",
			clientID: "",
			header: headers(
				"X-Dataporten-Clientid", "any",
				"X-Dataporten-Userid-Sec", "nin:01010112345, feide:ola@Student.NTNU.no",
			),
			expectedOrg: "student",
		},
		{
			name:        "no gatekeeper headers",
			clientID:    "client-1",
			header:      headers(),
			expectedErr: true,
		},
		{
			name:     "wrong client",
			clientID: "client-1",
			header: headers(
				"X-Dataporten-Clientid", "client-2",
				"X-Dataporten-Userid-Sec", "feide:jane@uninett.no",
			),
			expectedErr: true,
		},
		{
			name:     "no feide id",
			clientID: "client-1",
			header: headers(
				"X-Dataporten-Clientid", "client-1",
				"X-Dataporten-Userid-Sec", "nin:01010112345",
			),
			expectedErr: true,
		},
		{
			name:     "feide id without realm",
			clientID: "client-1",
			header: headers(
				"X-Dataporten-Clientid", "client-1",
				"X-Dataporten-Userid-Sec", "feide:jane",
			),
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.clientID, "feide")
			id, err := v.Verify(tt.header)
			if tt.expectedErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorTypeUnauthorized, domain.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOrg, id.Org)
		})
	}
}

func TestOrgFromUserID(t *testing.T) {
	assert.Equal(t, "uninett", OrgFromUserID("jane@uninett.no"))
	assert.Equal(t, "uio", OrgFromUserID("a@b@UiO.no"))
	assert.Equal(t, "", OrgFromUserID("jane@"))
	assert.Equal(t, "", OrgFromUserID("jane"))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	id := &Identity{Org: "uninett"}
	ctx := WithIdentity(context.Background(), id)
	assert.Same(t, id, FromContext(ctx))
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/infrastructure/dataporten"
	"github.com/uninett/connect-import-service/pkg/constants"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version/", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(constants.RequestIDHeader))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/version/", nil)
		req.Header.Set(constants.RequestIDHeader, "abc-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc-1", seen)
		assert.Equal(t, "abc-1", rec.Header().Get(constants.RequestIDHeader))
	})
}

func TestRequestLoggerMiddleware_CapturesStatus(t *testing.T) {
	handler := RequestLoggerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/create/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestIsOperational(t *testing.T) {
	assert.True(t, isOperational("/livez"))
	assert.True(t, isOperational("/metrics"))
	assert.False(t, isOperational("/api/ac-csv-import/version/"))
}

func TestIdentityMiddleware(t *testing.T) {
	verifier := dataporten.NewVerifier("client-1", "feide")
	var gotErr error
	writeError := func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusUnauthorized)
	}

	var org string
	handler := IdentityMiddleware(verifier, writeError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org = dataporten.FromContext(r.Context()).Org
	}))

	t.Run("accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constants.DataportenClientIDHeader, "client-1")
		req.Header.Set(constants.DataportenUserIDSecHeader, "feide:jane@uninett.no")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "uninett", org)
	})

	t.Run("rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, domain.ErrorTypeUnauthorized, domain.GetErrorType(gotErr))
	})
}

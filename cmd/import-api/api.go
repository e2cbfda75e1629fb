// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
	"github.com/uninett/connect-import-service/internal/infrastructure/dataporten"
	"github.com/uninett/connect-import-service/internal/logging"
	"github.com/uninett/connect-import-service/internal/service"
)

// maxBodySize caps request bodies; a batch of a few thousand rows fits easily.
const maxBodySize = 10 << 20

// ImportAPI serves the HTTP surface of the import service.
type ImportAPI struct {
	service  *service.ProvisioningService
	basePath string
}

// NewImportAPI creates a new ImportAPI.
func NewImportAPI(service *service.ProvisioningService, basePath string) *ImportAPI {
	return &ImportAPI{
		service:  service,
		basePath: basePath,
	}
}

type errorResponse struct {
	Status  bool   `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type versionResponse struct {
	Status  bool   `json:"status"`
	Version string `json:"version"`
}

type dataResponse struct {
	Status bool   `json:"status"`
	Data   any    `json:"data"`
	Token  string `json:"token"`
}

type route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type routesResponse struct {
	Status bool    `json:"status"`
	Routes []route `json:"routes"`
}

// statusCode maps an error to the HTTP status of the error envelope.
func statusCode(err error) int {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation, domain.ErrorTypeRemoteAPI, domain.ErrorTypeProvisioning:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeUnauthorized, domain.ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	case domain.ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "error encoding response", logging.ErrKey, err)
	}
}

// writeError renders err as the error envelope. Internal errors are not
// described to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "internal error", logging.ErrKey, err)
		message = http.StatusText(code)
	}
	writeJSON(w, r, code, errorResponse{Status: false, Code: code, Message: message})
}

// callerOrg returns the org of the verified caller, or "" when none.
func callerOrg(r *http.Request) string {
	if id := dataporten.FromContext(r.Context()); id != nil {
		return id.Org
	}
	return ""
}

// Livez checks if the service is alive.
func (a *ImportAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	_, _ = w.Write([]byte("OK\n"))
}

// Readyz checks if the service is able to take inbound requests.
func (a *ImportAPI) Readyz(w http.ResponseWriter, r *http.Request) {
	if !a.service.ServiceReady() {
		writeError(w, r, domain.ErrServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("OK\n"))
}

// Routes lists the API endpoints.
func (a *ImportAPI) Routes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, routesResponse{
		Status: true,
		Routes: []route{
			{http.MethodGet, a.basePath + "/", "List the API routes"},
			{http.MethodGet, a.basePath + "/version/", "Adobe Connect server version"},
			{http.MethodGet, a.basePath + "/folder/{org}/nav/", "Sub-folders of the org folder in shared meetings"},
			{http.MethodPost, a.basePath + "/rooms/create/", "Find or create meeting rooms from CSV rows of room key and user login"},
			{http.MethodPost, a.basePath + "/users/create/", "Find or create users and make them hosts of their rooms"},
		},
	})
}

// Version reports the Connect server version.
func (a *ImportAPI) Version(w http.ResponseWriter, r *http.Request) {
	version, err := a.service.GetVersion(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, versionResponse{Status: true, Version: version})
}

// FolderNav lists the sub-folders of the org folder.
func (a *ImportAPI) FolderNav(w http.ResponseWriter, r *http.Request) {
	nav, err := a.service.GetOrgFolderNav(r.Context(), callerOrg(r), chi.URLParam(r, "org"), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	folders := nav.Folders
	if folders == nil {
		folders = []models.Sco{}
	}
	writeJSON(w, r, http.StatusOK, dataResponse{Status: true, Data: folders, Token: nav.Token})
}

// CreateRooms runs a rooms batch.
func (a *ImportAPI) CreateRooms(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRoomsRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, token, err := a.service.CreateRooms(r.Context(), callerOrg(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dataResponse{Status: true, Data: result, Token: token})
}

// CreateUsers runs a users batch.
func (a *ImportAPI) CreateUsers(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUsersRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, token, err := a.service.CreateUsers(r.Context(), callerOrg(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dataResponse{Status: true, Data: result, Token: token})
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uninett/connect-import-service/internal/config"
	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/mocks"
	"github.com/uninett/connect-import-service/internal/domain/models"
	"github.com/uninett/connect-import-service/internal/infrastructure/dataporten"
	"github.com/uninett/connect-import-service/internal/service"
	"github.com/uninett/connect-import-service/pkg/constants"
)

const (
	testBasePath = "/api/ac-csv-import"
	testClientID = "client-1"
	testSession  = "breez-1"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:            "8080",
		Bind:            "*",
		BasePath:        testBasePath,
		CORSOrigins:     []string{"*"},
		RateLimitWindow: time.Minute,
	}
}

func newTestRouter(t *testing.T, server config.ServerConfig) (http.Handler, *mocks.MockConnectClient) {
	t.Helper()
	client := &mocks.MockConnectClient{}
	client.On("Session").Return(testSession).Maybe()
	factory := &mocks.MockConnectClientFactory{}
	factory.On("NewClient", mock.Anything).Return(client)
	events := &mocks.MockProvisioningEventSender{}
	events.On("SendRoomProvisioned", mock.Anything, mock.Anything).Return(nil).Maybe()
	events.On("SendUserProvisioned", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := service.NewProvisioningService(factory, events, service.ServiceConfig{
		SharedFolderID: "1001",
		ServiceURL:     "https://connect.example.org",
	})
	api := NewImportAPI(svc, server.BasePath)
	return newRouter(server, api, dataporten.NewVerifier(testClientID, "feide")), client
}

func authedRequest(method, path string, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(constants.DataportenClientIDHeader, testClientID)
	req.Header.Set(constants.DataportenUserIDSecHeader, "feide:jane@uninett.no")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestOperationalEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t, testServerConfig())

	for _, path := range []string{constants.LivezPath, constants.ReadyzPath, constants.LivezPath + "/"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(handler, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "OK\n", rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(constants.RequestIDHeader))
		})
	}

	t.Run("metrics", func(t *testing.T) {
		rec := serve(handler, httptest.NewRequest(http.MethodGet, constants.MetricsPath, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestReadyz_NotReady(t *testing.T) {
	api := NewImportAPI(&service.ProvisioningService{}, testBasePath)
	handler := newRouter(testServerConfig(), api, dataporten.NewVerifier("", "feide"))

	rec := serve(handler, httptest.NewRequest(http.MethodGet, constants.ReadyzPath, nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, float64(http.StatusServiceUnavailable), body["code"])
}

func TestIdentityRequired(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no headers"},
		{name: "wrong client", headers: map[string]string{
			constants.DataportenClientIDHeader:  "other",
			constants.DataportenUserIDSecHeader: "feide:jane@uninett.no",
		}},
		{name: "no feide id", headers: map[string]string{
			constants.DataportenClientIDHeader:  testClientID,
			constants.DataportenUserIDSecHeader: "nin:12345678901",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, testBasePath+"/version/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rec := serve(handler, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["status"])
			assert.Equal(t, float64(http.StatusUnauthorized), body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
	client.AssertNotCalled(t, "CommonInfo", mock.Anything)
}

func TestRoutes(t *testing.T) {
	handler, _ := newTestRouter(t, testServerConfig())

	for _, path := range []string{testBasePath, testBasePath + "/"} {
		rec := serve(handler, authedRequest(http.MethodGet, path, ""))

		require.Equal(t, http.StatusOK, rec.Code, path)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["status"])
		assert.Len(t, body["routes"], 5)
	}
}

func TestVersion(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	client.On("CommonInfo", mock.Anything).Return(&models.CommonInfo{Version: "9.5.0"}, nil)

	for _, path := range []string{testBasePath + "/version/", testBasePath + "/version"} {
		rec := serve(handler, authedRequest(http.MethodGet, path, ""))

		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":true,"version":"9.5.0"}`, rec.Body.String())
	}
}

func TestVersion_Unavailable(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	client.On("CommonInfo", mock.Anything).Return(nil, domain.NewUnavailableError("connect unreachable"))

	rec := serve(handler, authedRequest(http.MethodGet, testBasePath+"/version/", ""))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "connect unreachable")
}

func TestFolderNav(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	client.On("SearchScos", mock.Anything, models.ScoSearch{Query: "uninett", Type: models.ScoTypeFolder, FolderID: "1001"}).
		Return([]models.Sco{{ID: "500", Name: "uninett"}}, nil)
	client.On("ExpandedContents", mock.Anything, "500", models.ScoTypeFolder).
		Return([]models.Sco{{ID: "501", FolderID: "500", Type: "folder", Name: "Kurs", Depth: 1}}, nil)

	rec := serve(handler, authedRequest(http.MethodGet, testBasePath+"/folder/uninett/nav/", ""))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"status": true,
		"token": "breez-1",
		"data": [{"sco-id":"501","folder-id":"500","type":"folder","name":"Kurs","depth":1}]
	}`, rec.Body.String())
}

func TestFolderNav_OtherOrg(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())

	rec := serve(handler, authedRequest(http.MethodGet, testBasePath+"/folder/ntnu/nav/", ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	client.AssertNotCalled(t, "SearchScos", mock.Anything, mock.Anything)
}

func expectExistingRooms(client *mocks.MockConnectClient, names ...string) {
	for i, name := range names {
		client.On("SearchScos", mock.Anything, models.ScoSearch{Query: name, Type: models.ScoTypeMeeting}).
			Return([]models.Sco{{ID: fmt.Sprint(100 + i), FolderID: fmt.Sprint(200 + i), Name: name, URLPath: "/r" + fmt.Sprint(i) + "/"}}, nil)
	}
}

func TestCreateRooms_JSON(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	expectExistingRooms(client, "Kurs beta", "Kurs alpha")

	body := `{
		"user_org_shortname": "uninett",
		"room_folder_sco": "2002",
		"room_name_prefix": "Kurs ",
		"csv_data": [["beta","u1@x"],["alpha","u2@x"],["beta","u3@x"]]
	}`
	rec := serve(handler, authedRequest(http.MethodPost, testBasePath+"/rooms/create/", body))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	raw := rec.Body.String()
	assert.Less(t, strings.Index(raw, `"beta"`), strings.Index(raw, `"alpha"`), "rooms keep batch order")

	var resp struct {
		Status bool                    `json:"status"`
		Token  string                  `json:"token"`
		Data   *models.RoomSet[string] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Status)
	assert.Equal(t, testSession, resp.Token)
	assert.Equal(t, []string{"beta", "alpha"}, resp.Data.Keys())
	beta, _ := resp.Data.Get("beta")
	assert.Equal(t, []string{"u1@x", "u3@x"}, beta.Users)
	assert.Equal(t, "https://connect.example.org/r0/", beta.Room.URLPath)
}

func TestCreateRooms_CSVText(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	expectExistingRooms(client, "Kurs A")

	body := `{"user_org_shortname":"uninett","room_folder_sco":"2002","room_name_prefix":"Kurs ","csv_data":"A,u1@x\nA,u2@x\n"}`
	rec := serve(handler, authedRequest(http.MethodPost, testBasePath+"/rooms/create/", body))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	client.AssertNumberOfCalls(t, "SearchScos", 1)
}

func TestCreateRooms_Form(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	expectExistingRooms(client, "Kurs A", "Kurs B")

	form := url.Values{
		"user_org_shortname": {"uninett"},
		"room_folder_sco":    {"2002"},
		"room_name_prefix":   {"Kurs "},
		"token":              {"from-form"},
		"csv_data[10][0]":    {"B"},
		"csv_data[10][1]":    {"u3@x"},
		"csv_data[2][0]":     {"A"},
		"csv_data[2][1]":     {"u1@x"},
	}
	req := authedRequest(http.MethodPost, testBasePath+"/rooms/create/", form.Encode())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(handler, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	raw := rec.Body.String()
	assert.Less(t, strings.Index(raw, `"A"`), strings.Index(raw, `"B"`), "rows follow their numeric index")
}

func TestCreateRooms_FormAppendedCells(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	expectExistingRooms(client, "Kurs A", "Kurs B")

	body := "user_org_shortname=uninett&room_folder_sco=2002&room_name_prefix=Kurs+" +
		"&csv_data[0][]=B&csv_data[0][]=u3%40x&csv_data[1][]=A&csv_data[1][]=u1%40x"
	req := authedRequest(http.MethodPost, testBasePath+"/rooms/create", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(handler, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	raw := rec.Body.String()
	assert.Less(t, strings.Index(raw, `"B"`), strings.Index(raw, `"A"`))
	assert.Contains(t, raw, `"u3@x"`)
}

func TestCreateRooms_Rejected(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{
			name:         "invalid json",
			body:         `{"csv_data": [`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "three columns",
			body:         `{"user_org_shortname":"uninett","room_folder_sco":"2002","room_name_prefix":"K","csv_data":[["A","u1","x"]]}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing prefix",
			body:         `{"user_org_shortname":"uninett","room_folder_sco":"2002","csv_data":[["A","u1"]]}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "other org",
			body:         `{"user_org_shortname":"ntnu","room_folder_sco":"2002","room_name_prefix":"K","csv_data":[["A","u1"]]}`,
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, client := newTestRouter(t, testServerConfig())

			rec := serve(handler, authedRequest(http.MethodPost, testBasePath+"/rooms/create/", tt.body))

			assert.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["status"])
			assert.Equal(t, float64(tt.expectedCode), body["code"])
			client.AssertNotCalled(t, "SearchScos", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateRooms_ProvisioningFailure(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	client.On("SearchScos", mock.Anything, mock.Anything).Return([]models.Sco{}, nil)
	client.On("CreateSco", mock.Anything, mock.Anything).Return(nil, domain.NewRemoteAPIError("sco-update failed", "duplicate"))

	body := `{"user_org_shortname":"uninett","room_folder_sco":"2002","room_name_prefix":"Kurs ","csv_data":[["A","u1@x"]]}`
	rec := serve(handler, authedRequest(http.MethodPost, testBasePath+"/rooms/create/", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "duplicate")
}

func TestCreateUsers(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())
	client.On("FindPrincipal", mock.Anything, "u1@x").Return(&models.Principal{ID: "p1", Login: "u1@x"}, nil)
	client.On("FindPrincipal", mock.Anything, "u2@x").Return(nil, nil)
	client.On("CreatePrincipal", mock.Anything, mock.MatchedBy(func(p models.PrincipalCreate) bool {
		return p.Login == "u2@x" && p.FirstName == "Kari" && p.LastName == "Nordmann"
	})).Return(&models.Principal{ID: "p2", Login: "u2@x"}, nil)
	client.On("UpdatePermission", mock.Anything, "p1", "11", models.PermissionHost).Return(errors.New("denied"))
	client.On("UpdatePermission", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body := `{
		"user_org_shortname": "UNINETT",
		"token": "reuse-me",
		"data": {
			"A": {
				"room": {"id":"11","folder_id":"10","name":"Kurs A","description":"","url_path":"https://connect.example.org/a/","autocreated":true},
				"users": ["u1@x", {"login":"u2@x","first_name":"Kari","last_name":"Nordmann"}]
			}
		}
	}`
	rec := serve(handler, authedRequest(http.MethodPost, testBasePath+"/users/create/", body))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"status": true,
		"token": "breez-1",
		"data": {
			"A": {
				"room": {"id":"11","folder_id":"10","name":"Kurs A","description":"","url_path":"https://connect.example.org/a/","autocreated":true},
				"users": [
					{"id":"p1","username":"u1@x","autocreated":false,"host":false,"manager":true},
					{"id":"p2","username":"u2@x","autocreated":true,"host":true,"manager":true}
				]
			}
		}
	}`, rec.Body.String())
}

func TestCreateUsers_Form(t *testing.T) {
	body := "user_org_shortname=uninett&token=reuse-me" +
		"&data[B][room][id]=12&data[B][room][folder_id]=10&data[B][room][name]=Kurs+B" +
		"&data[B][users][]=u1%40x" +
		"&data[A][room][id]=11&data[A][room][folder_id]=10&data[A][room][name]=Kurs+A" +
		"&data[A][users][0][login]=u2%40x&data[A][users][0][first_name]=Kari&data[A][users][0][last_name]=Nordmann"

	tests := []struct {
		name        string
		contentType string
		body        func(t *testing.T) string
	}{
		{
			name:        "urlencoded",
			contentType: "application/x-www-form-urlencoded",
			body:        func(*testing.T) string { return body },
		},
		{
			name:        "multipart",
			contentType: "multipart/form-data; boundary=xyz",
			body: func(t *testing.T) string {
				fields, err := parseURLEncoded(body)
				require.NoError(t, err)
				var sb strings.Builder
				for _, f := range fields {
					fmt.Fprintf(&sb, "--xyz\r\nContent-Disposition: form-data; name=%q\r\n\r\n%s\r\n", f.key, f.value)
				}
				sb.WriteString("--xyz--\r\n")
				return sb.String()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, client := newTestRouter(t, testServerConfig())
			client.On("FindPrincipal", mock.Anything, "u1@x").Return(&models.Principal{ID: "p1", Login: "u1@x"}, nil)
			client.On("FindPrincipal", mock.Anything, "u2@x").Return(nil, nil)
			client.On("CreatePrincipal", mock.Anything, mock.MatchedBy(func(p models.PrincipalCreate) bool {
				return p.Login == "u2@x" && p.FirstName == "Kari" && p.LastName == "Nordmann"
			})).Return(&models.Principal{ID: "p2", Login: "u2@x"}, nil)
			client.On("UpdatePermission", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

			req := authedRequest(http.MethodPost, testBasePath+"/users/create", tt.body(t))
			req.Header.Set("Content-Type", tt.contentType)
			rec := serve(handler, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			raw := rec.Body.String()
			assert.Less(t, strings.Index(raw, `"B"`), strings.Index(raw, `"A"`), "rooms follow body order")
			client.AssertCalled(t, "UpdatePermission", mock.Anything, "p1", "12", models.PermissionHost)
			client.AssertCalled(t, "UpdatePermission", mock.Anything, "p2", "11", models.PermissionHost)
		})
	}
}

func TestCreateUsers_MissingRoomID(t *testing.T) {
	handler, client := newTestRouter(t, testServerConfig())

	body := `{"user_org_shortname":"uninett","data":{"A":{"room":{"name":"Kurs A"},"users":["u1@x"]}}}`
	rec := serve(handler, authedRequest(http.MethodPost, testBasePath+"/users/create/", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	client.AssertNotCalled(t, "FindPrincipal", mock.Anything, mock.Anything)
}

func TestRateLimit(t *testing.T) {
	server := testServerConfig()
	server.RateLimit = 1
	handler, _ := newTestRouter(t, server)

	body := `{"csv_data": [`
	first := serve(handler, authedRequest(http.MethodPost, testBasePath+"/rooms/create/", body))
	second := serve(handler, authedRequest(http.MethodPost, testBasePath+"/rooms/create/", body))

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, float64(http.StatusTooManyRequests), decodeBody(t, second)["code"])
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("bad"), http.StatusBadRequest},
		{domain.NewRemoteAPIError("status", "no-data"), http.StatusBadRequest},
		{domain.NewProvisioningError("create", "duplicate"), http.StatusBadRequest},
		{domain.NewNotFoundError("missing"), http.StatusNotFound},
		{domain.NewUnauthorizedError("org"), http.StatusUnauthorized},
		{domain.NewAuthenticationError("login"), http.StatusUnauthorized},
		{domain.NewUnavailableError("down"), http.StatusServiceUnavailable},
		{domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{domain.NewRateLimitedError("slow"), http.StatusTooManyRequests},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusCode(tt.err))
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("db password is hunter2"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestFormCSVRows(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    models.CSVRows
		wantErr bool
	}{
		{
			name: "csv text",
			body: url.Values{"csv_data": {"A,u1\nB,u2"}}.Encode(),
			want: models.CSVRows{{"A", "u1"}, {"B", "u2"}},
		},
		{
			name: "indexed cells in numeric order",
			body: "csv_data[1][1]=u2&csv_data[1][0]=B&csv_data[0][0]=A&csv_data[0][1]=u1&other=ignored",
			want: models.CSVRows{{"A", "u1"}, {"B", "u2"}},
		},
		{
			name: "appended cells in body order",
			body: "csv_data[1][]=B&csv_data[1][]=u2&csv_data[0][]=A&csv_data[0][]=u1",
			want: models.CSVRows{{"A", "u1"}, {"B", "u2"}},
		},
		{
			name: "appended cell after an indexed one",
			body: "csv_data[0][0]=A&csv_data[0][]=u1",
			want: models.CSVRows{{"A", "u1"}},
		},
		{
			name: "escaped brackets",
			body: "csv_data%5B0%5D%5B%5D=A&csv_data%5B0%5D%5B%5D=u1%40x",
			want: models.CSVRows{{"A", "u1@x"}},
		},
		{
			name: "missing user cell leaves a short row",
			body: "csv_data[0][0]=A",
			want: models.CSVRows{{"A"}},
		},
		{
			name:    "third column",
			body:    "csv_data[0][2]=x",
			wantErr: true,
		},
		{
			name:    "third appended cell",
			body:    "csv_data[0][]=A&csv_data[0][]=u1&csv_data[0][]=x",
			wantErr: true,
		},
		{
			name: "no rows",
			body: "",
			want: models.CSVRows{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := parseURLEncoded(tt.body)
			require.NoError(t, err)

			rows, err := formCSVRows(fields)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestFormRoomSet(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKeys []string
		want     map[string]models.RoomEntry[models.UserRequest]
		wantErr  bool
	}{
		{
			name:     "rooms in order of first appearance",
			body:     "data[B][room][id]=12&data[A][room][id]=11&data[B][users][]=u2&data[A][users][]=u1",
			wantKeys: []string{"B", "A"},
			want: map[string]models.RoomEntry[models.UserRequest]{
				"A": {Room: models.RoomRecord{ID: "11"}, Users: []models.UserRequest{{Login: "u1"}}},
				"B": {Room: models.RoomRecord{ID: "12"}, Users: []models.UserRequest{{Login: "u2"}}},
			},
		},
		{
			name: "room attributes",
			body: "data[A][room][id]=11&data[A][room][folder_id]=10&data[A][room][name]=Kurs+A" +
				"&data[A][room][url_path]=https%3A%2F%2Fconnect.example.org%2Fa%2F&data[A][room][autocreated]=1" +
				"&data[A][room][unknown]=x",
			wantKeys: []string{"A"},
			want: map[string]models.RoomEntry[models.UserRequest]{
				"A": {Room: models.RoomRecord{
					ID: "11", FolderID: "10", Name: "Kurs A", URLPath: "https://connect.example.org/a/", Autocreated: true,
				}, Users: []models.UserRequest{}},
			},
		},
		{
			name: "indexed users with names",
			body: "data[A][room][id]=11&data[A][users][0][login]=u1&data[A][users][1][login]=u2" +
				"&data[A][users][1][first_name]=Kari&data[A][users][1][last_name]=Nordmann&data[A][users][2]=u3",
			wantKeys: []string{"A"},
			want: map[string]models.RoomEntry[models.UserRequest]{
				"A": {Room: models.RoomRecord{ID: "11"}, Users: []models.UserRequest{
					{Login: "u1"},
					{Login: "u2", FirstName: "Kari", LastName: "Nordmann"},
					{Login: "u3"},
				}},
			},
		},
		{
			name:    "unknown user field",
			body:    "data[A][room][id]=11&data[A][users][0][email]=x",
			wantErr: true,
		},
		{
			name:    "non-numeric user index",
			body:    "data[A][users][first][login]=x",
			wantErr: true,
		},
		{
			name: "no data fields",
			body: "user_org_shortname=uninett",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := parseURLEncoded(tt.body)
			require.NoError(t, err)

			set, err := formRoomSet(fields)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, set)
				return
			}
			assert.Equal(t, tt.wantKeys, set.Keys())
			for key, want := range tt.want {
				got, ok := set.Get(key)
				require.True(t, ok, key)
				assert.Equal(t, want, *got)
			}
		})
	}
}

func TestFlagsApplyAndListenAddr(t *testing.T) {
	cfg := &config.Config{Server: testServerConfig()}

	flags{}.apply(cfg)
	assert.Equal(t, ":8080", listenAddr(cfg.Server))

	flags{Port: "9000", Bind: "127.0.0.1"}.apply(cfg)
	assert.Equal(t, "127.0.0.1:9000", listenAddr(cfg.Server))
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
)

var (
	// csvCellKey matches csv_data[row][column] and csv_data[row][].
	csvCellKey = regexp.MustCompile(`^csv_data\[(\d+)\]\[(\d*)\]$`)
	// dataKey matches data[room][room][field], data[room][users][] and
	// data[room][users][i] with an optional [field].
	dataKey = regexp.MustCompile(`^data\[([^\]]+)\]\[(room|users)\]\[([^\]]*)\](?:\[([^\]]*)\])?$`)
)

// formField is one key/value pair of a form body, in body order.
type formField struct {
	key   string
	value string
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("invalid request body", domain.ErrMalformedBatch, err)
	}
	return nil
}

// formMediaType returns the media type and its parameters when the request
// carries a form body.
func formMediaType(r *http.Request) (string, map[string]string, bool) {
	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return mediaType, params, true
	default:
		return "", nil, false
	}
}

// readForm reads a urlencoded or multipart body as fields in body order.
// File parts are skipped.
func readForm(w http.ResponseWriter, r *http.Request, mediaType string, params map[string]string) ([]formField, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)

	if mediaType != "multipart/form-data" {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, domain.NewValidationError("invalid form body", domain.ErrMalformedBatch, err)
		}
		return parseURLEncoded(string(raw))
	}

	var fields []formField
	reader := multipart.NewReader(body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		if err != nil {
			return nil, domain.NewValidationError("invalid form body", domain.ErrMalformedBatch, err)
		}
		if part.FormName() == "" || part.FileName() != "" {
			continue
		}
		value, err := io.ReadAll(part)
		if err != nil {
			return nil, domain.NewValidationError("invalid form body", domain.ErrMalformedBatch, err)
		}
		fields = append(fields, formField{key: part.FormName(), value: string(value)})
	}
}

// parseURLEncoded splits an application/x-www-form-urlencoded body into
// fields, keeping their order.
func parseURLEncoded(raw string) ([]formField, error) {
	var fields []formField
	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, domain.NewValidationError("invalid form body", domain.ErrMalformedBatch, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, domain.NewValidationError("invalid form body", domain.ErrMalformedBatch, err)
		}
		fields = append(fields, formField{key: key, value: value})
	}
	return fields, nil
}

// formValue returns the first value of key.
func formValue(fields []formField, key string) string {
	for _, f := range fields {
		if f.key == key {
			return f.value
		}
	}
	return ""
}

// decodeRoomsRequest reads a rooms batch from a JSON body or from a form
// body as posted by the web frontend.
func decodeRoomsRequest(w http.ResponseWriter, r *http.Request) (*models.CreateRoomsRequest, error) {
	mediaType, params, ok := formMediaType(r)
	if !ok {
		req := &models.CreateRoomsRequest{}
		if err := decodeJSON(w, r, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	fields, err := readForm(w, r, mediaType, params)
	if err != nil {
		return nil, err
	}

	rows, err := formCSVRows(fields)
	if err != nil {
		return nil, err
	}

	return &models.CreateRoomsRequest{
		OrgShortName:    formValue(fields, "user_org_shortname"),
		RoomFolderSco:   formValue(fields, "room_folder_sco"),
		RoomNamePrefix:  formValue(fields, "room_name_prefix"),
		RoomDescription: formValue(fields, "room_description"),
		Token:           formValue(fields, "token"),
		CSVData:         rows,
	}, nil
}

// formCSVRows collects the batch rows from csv_data, given either as CSV
// text or as csv_data[i][j] and csv_data[i][] fields. Rows keep their index
// order; csv_data[i][] appends after the highest column set so far.
func formCSVRows(fields []formField) (models.CSVRows, error) {
	if text := formValue(fields, "csv_data"); text != "" {
		rows, err := models.ParseCSV(text)
		if err != nil {
			return nil, domain.NewValidationError(err.Error(), domain.ErrMalformedBatch)
		}
		return rows, nil
	}

	cells := make(map[int]map[int]string)
	for _, f := range fields {
		m := csvCellKey.FindStringSubmatch(f.key)
		if m == nil {
			continue
		}
		row, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid row index in %s", f.key), domain.ErrMalformedBatch)
		}
		if cells[row] == nil {
			cells[row] = make(map[int]string, 2)
		}

		col := 0
		if m[2] == "" {
			if len(cells[row]) > 0 {
				col = slices.Max(slices.Collect(maps.Keys(cells[row]))) + 1
			}
		} else if col, err = strconv.Atoi(m[2]); err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid column index in %s", f.key), domain.ErrMalformedBatch)
		}
		if col > 1 {
			return nil, domain.NewValidationError(fmt.Sprintf("row %d has more than 2 columns", row), domain.ErrMalformedBatch)
		}
		cells[row][col] = f.value
	}

	rows := make(models.CSVRows, 0, len(cells))
	for _, i := range slices.Sorted(maps.Keys(cells)) {
		width := slices.Max(slices.Collect(maps.Keys(cells[i]))) + 1
		row := make([]string, width)
		for j, v := range cells[i] {
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeUsersRequest reads a users batch from a JSON body or from a form body
// of data[room][...] fields as posted by the web frontend. Rooms keep the
// order in which their keys first appear in the body.
func decodeUsersRequest(w http.ResponseWriter, r *http.Request) (*models.CreateUsersRequest, error) {
	mediaType, params, ok := formMediaType(r)
	if !ok {
		req := &models.CreateUsersRequest{}
		if err := decodeJSON(w, r, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	fields, err := readForm(w, r, mediaType, params)
	if err != nil {
		return nil, err
	}

	data, err := formRoomSet(fields)
	if err != nil {
		return nil, err
	}

	return &models.CreateUsersRequest{
		OrgShortName: formValue(fields, "user_org_shortname"),
		Token:        formValue(fields, "token"),
		Data:         data,
	}, nil
}

// formRoomSet builds the rooms of a users batch from data[...] fields.
// Users given as data[room][users][] are logins; data[room][users][i][field]
// carries login, first_name and last_name of user i.
func formRoomSet(fields []formField) (*models.RoomSet[models.UserRequest], error) {
	var set *models.RoomSet[models.UserRequest]
	// Position in the room's user list of each indexed user.
	slots := make(map[string]map[string]int)

	for _, f := range fields {
		m := dataKey.FindStringSubmatch(f.key)
		if m == nil {
			continue
		}
		if set == nil {
			set = models.NewRoomSet[models.UserRequest]()
		}
		key, section, field, sub := m[1], m[2], m[3], m[4]

		entry, ok := set.Get(key)
		if !ok {
			entry = set.Add(key, models.RoomRecord{})
		}

		if section == "room" {
			if sub != "" {
				return nil, domain.NewValidationError(fmt.Sprintf("unexpected field %s", f.key), domain.ErrMalformedBatch)
			}
			setRoomField(&entry.Room, field, f.value)
			continue
		}

		if field == "" {
			if sub != "" {
				return nil, domain.NewValidationError(fmt.Sprintf("unexpected field %s", f.key), domain.ErrMalformedBatch)
			}
			entry.Users = append(entry.Users, models.UserRequest{Login: f.value})
			continue
		}
		if _, err := strconv.Atoi(field); err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid user index in %s", f.key), domain.ErrMalformedBatch)
		}

		if slots[key] == nil {
			slots[key] = make(map[string]int)
		}
		pos, ok := slots[key][field]
		if !ok {
			pos = len(entry.Users)
			slots[key][field] = pos
			entry.Users = append(entry.Users, models.UserRequest{})
		}

		user := &entry.Users[pos]
		switch sub {
		case "", "login":
			user.Login = f.value
		case "first_name":
			user.FirstName = f.value
		case "last_name":
			user.LastName = f.value
		default:
			return nil, domain.NewValidationError(fmt.Sprintf("unexpected field %s", f.key), domain.ErrMalformedBatch)
		}
	}
	return set, nil
}

// setRoomField sets one room attribute sent back from a rooms batch. Unknown
// attributes are ignored.
func setRoomField(room *models.RoomRecord, field, value string) {
	switch field {
	case "id":
		room.ID = value
	case "folder_id":
		room.FolderID = value
	case "name":
		room.Name = value
	case "description":
		room.Description = value
	case "url_path":
		room.URLPath = value
	case "autocreated":
		room.Autocreated, _ = strconv.ParseBool(value)
	}
}

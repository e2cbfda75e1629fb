// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
	"github.com/uninett/connect-import-service/internal/logging"
	"github.com/uninett/connect-import-service/internal/metrics"
	"github.com/uninett/connect-import-service/pkg/constants"
	"github.com/uninett/connect-import-service/pkg/utils"
)

// resolveOrCreateRoom returns the meeting named prefix+roomKey, creating it
// in a folder of the same name under parentFolderID when it does not exist.
func (b *batch) resolveOrCreateRoom(ctx context.Context, parentFolderID, prefix, roomKey, description string) (*models.RoomRecord, error) {
	name := prefix + roomKey

	// The search matches substrings, so only exact names count.
	scos, err := b.client.SearchScos(ctx, models.ScoSearch{Query: name, Type: models.ScoTypeMeeting})
	if err != nil {
		slog.ErrorContext(ctx, "error searching for meeting room", logging.ErrKey, err, "name", name)
		return nil, err
	}
	for _, sco := range scos {
		if sco.Name == name {
			room := b.roomRecord(sco, false)
			metrics.RoomsProvisioned.WithLabelValues(metrics.ProvisionOutcome(false)).Inc()
			slog.DebugContext(ctx, "found existing meeting room", "name", name, "sco_id", sco.ID)
			return &room, nil
		}
	}

	description = utils.CoalesceString(description, constants.DefaultRoomDescription)

	folder, err := b.client.CreateSco(ctx, models.ScoUpdate{
		Type:        models.ScoTypeFolder,
		Name:        name,
		Description: description,
		FolderID:    parentFolderID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error creating room folder", logging.ErrKey, err, "name", name, "parent_id", parentFolderID)
		return nil, provisioningFailure(fmt.Sprintf("failed to create folder for meeting room %q", name), err)
	}

	meeting, err := b.client.CreateSco(ctx, models.ScoUpdate{
		Type:        models.ScoTypeMeeting,
		Name:        name,
		Description: description,
		FolderID:    folder.ID,
		DateBegin:   constants.RoomPlaceholderBegin,
		DateEnd:     constants.RoomPlaceholderEnd,
		URLPath:     utils.URLPathSegment(name),
	})
	if err != nil {
		slog.ErrorContext(ctx, "error creating meeting room", logging.ErrKey, err, "name", name, "folder_id", folder.ID)
		return nil, provisioningFailure(fmt.Sprintf("failed to create meeting room %q", name), err)
	}
	if meeting.FolderID == "" {
		meeting.FolderID = folder.ID
	}

	room := b.roomRecord(*meeting, true)
	metrics.RoomsProvisioned.WithLabelValues(metrics.ProvisionOutcome(true)).Inc()
	slog.InfoContext(ctx, "created meeting room", "name", name, "sco_id", meeting.ID, "folder_id", meeting.FolderID)
	return &room, nil
}

func (b *batch) roomRecord(sco models.Sco, autocreated bool) models.RoomRecord {
	return models.RoomRecord{
		ID:          sco.ID,
		FolderID:    sco.FolderID,
		Name:        sco.Name,
		Description: sco.Description,
		URLPath:     b.config.ServiceURL + sco.URLPath,
		Autocreated: autocreated,
	}
}

// resolveOrgFolder finds the org's folder under the shared meetings root.
// The id is kept for the rest of the batch.
func (b *batch) resolveOrgFolder(ctx context.Context) (string, error) {
	if b.orgFolderID != "" {
		return b.orgFolderID, nil
	}

	scos, err := b.client.SearchScos(ctx, models.ScoSearch{
		Query:    b.org,
		Type:     models.ScoTypeFolder,
		FolderID: b.config.SharedFolderID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error searching for org folder", logging.ErrKey, err)
		return "", err
	}

	if len(scos) > 1 {
		exact := scos[:0:0]
		for _, sco := range scos {
			if strings.EqualFold(sco.Name, b.org) {
				exact = append(exact, sco)
			}
		}
		scos = exact
	}
	if len(scos) == 0 {
		slog.WarnContext(ctx, "org folder not found", "shared_folder_id", b.config.SharedFolderID)
		return "", domain.NewNotFoundError(fmt.Sprintf("could not find folder %q in the shared meetings folder", b.org))
	}

	b.orgFolderID = scos[0].ID
	return b.orgFolderID, nil
}

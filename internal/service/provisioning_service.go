// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/domain/models"
	"github.com/uninett/connect-import-service/internal/logging"
	"github.com/uninett/connect-import-service/internal/metrics"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProvisioningService drives find-or-create batches of rooms and users
// against Adobe Connect.
type ProvisioningService struct {
	ClientFactory domain.ConnectClientFactory
	EventSender   domain.ProvisioningEventSender
	Config        ServiceConfig
}

// NewProvisioningService creates a new ProvisioningService.
func NewProvisioningService(
	clientFactory domain.ConnectClientFactory,
	eventSender domain.ProvisioningEventSender,
	config ServiceConfig,
) *ProvisioningService {
	return &ProvisioningService{
		ClientFactory: clientFactory,
		EventSender:   eventSender,
		Config:        config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ProvisioningService) ServiceReady() bool {
	return s.ClientFactory != nil &&
		s.EventSender != nil &&
		s.Config.SharedFolderID != ""
}

// batch is the state of one request: a Connect client holding its own
// session, and the lookups already made with it.
type batch struct {
	client      domain.ConnectClient
	events      domain.ProvisioningEventSender
	config      ServiceConfig
	org         string
	orgFolderID string
	users       map[string]models.UserRecord
}

func (s *ProvisioningService) newBatch(org, session string) *batch {
	return &batch{
		client: s.ClientFactory.NewClient(session),
		events: s.EventSender,
		config: s.Config,
		org:    org,
		users:  make(map[string]models.UserRecord),
	}
}

// GetVersion returns the Connect server version.
func (s *ProvisioningService) GetVersion(ctx context.Context) (string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return "", domain.ErrServiceUnavailable
	}

	info, err := s.ClientFactory.NewClient("").CommonInfo(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error getting connect version", logging.ErrKey, err)
		return "", err
	}
	return info.Version, nil
}

// GetOrgFolderNav lists the sub-folders of the org's folder under the shared
// meetings root. callerOrg is the org of the verified caller.
func (s *ProvisioningService) GetOrgFolderNav(ctx context.Context, callerOrg, org, token string) (*models.FolderNav, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if err := verifyOrg(callerOrg, org); err != nil {
		slog.WarnContext(ctx, "org mismatch", logging.ErrKey, err, "caller_org", callerOrg, "org", org)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("org", org))
	b := s.newBatch(org, token)

	folderID, err := b.resolveOrgFolder(ctx)
	if err != nil {
		return nil, err
	}

	folders, err := b.client.ExpandedContents(ctx, folderID, models.ScoTypeFolder)
	if err != nil {
		slog.ErrorContext(ctx, "error listing org folder", logging.ErrKey, err, "folder_id", folderID)
		return nil, err
	}

	return &models.FolderNav{Folders: folders, Token: b.client.Session()}, nil
}

// CreateRooms resolves or creates one meeting room per distinct room key of
// the batch, in order of first appearance, and collects each room's logins.
// The returned token is the session used for the batch.
func (s *ProvisioningService) CreateRooms(ctx context.Context, callerOrg string, req *models.CreateRoomsRequest) (*models.RoomsResult, string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, "", domain.ErrServiceUnavailable
	}
	if req == nil {
		return nil, "", domain.NewValidationError("missing request body", domain.ErrMalformedBatch)
	}
	if err := validateRequest(req); err != nil {
		return nil, "", err
	}
	if err := verifyOrg(callerOrg, req.OrgShortName); err != nil {
		slog.WarnContext(ctx, "org mismatch", logging.ErrKey, err, "caller_org", callerOrg, "org", req.OrgShortName)
		return nil, "", err
	}

	pairs, err := req.CSVData.Pairs()
	if err != nil {
		return nil, "", domain.NewValidationError(err.Error(), domain.ErrMalformedBatch)
	}
	for i, pair := range pairs {
		if pair.RoomKey == "" || pair.UserLogin == "" {
			return nil, "", domain.NewValidationError(fmt.Sprintf("row %d has an empty field", i), domain.ErrMalformedBatch)
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("org", req.OrgShortName))
	slog.InfoContext(ctx, "creating rooms", "rows", len(pairs), "folder_id", req.RoomFolderSco)

	b := s.newBatch(req.OrgShortName, req.Token)
	result := models.NewRoomSet[string]()
	for _, pair := range pairs {
		entry, ok := result.Get(pair.RoomKey)
		if !ok {
			room, err := b.resolveOrCreateRoom(ctx, req.RoomFolderSco, req.RoomNamePrefix, pair.RoomKey, req.RoomDescription)
			if err != nil {
				metrics.BatchesTotal.WithLabelValues("rooms", "failure").Inc()
				return nil, "", err
			}
			entry = result.Add(pair.RoomKey, *room)
			b.roomProvisioned(ctx, pair.RoomKey, *room)
		}
		entry.Users = append(entry.Users, pair.UserLogin)
	}

	metrics.BatchesTotal.WithLabelValues("rooms", "success").Inc()
	slog.InfoContext(ctx, "rooms created", "rooms", result.Len())
	return result, b.client.Session(), nil
}

// CreateUsers resolves or creates every user listed under each room and
// grants them host on the room and manage on its folder. Grant failures are
// recorded on the user and do not stop the batch.
func (s *ProvisioningService) CreateUsers(ctx context.Context, callerOrg string, req *models.CreateUsersRequest) (*models.UsersResult, string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, "", domain.ErrServiceUnavailable
	}
	if req == nil {
		return nil, "", domain.NewValidationError("missing request body", domain.ErrMalformedBatch)
	}
	if err := validateRequest(req); err != nil {
		return nil, "", err
	}
	if err := verifyOrg(callerOrg, req.OrgShortName); err != nil {
		slog.WarnContext(ctx, "org mismatch", logging.ErrKey, err, "caller_org", callerOrg, "org", req.OrgShortName)
		return nil, "", err
	}

	// Reject the whole batch before any remote call if a room lacks its id.
	for _, key := range req.Data.Keys() {
		entry, _ := req.Data.Get(key)
		if entry.Room.ID == "" {
			return nil, "", domain.NewValidationError(fmt.Sprintf("missing sco-id of meeting room %q", key), domain.ErrMalformedBatch)
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("org", req.OrgShortName))
	slog.InfoContext(ctx, "creating users", "rooms", req.Data.Len())

	b := s.newBatch(req.OrgShortName, req.Token)
	result := models.NewRoomSet[models.UserRecord]()
	for _, key := range req.Data.Keys() {
		entry, _ := req.Data.Get(key)
		out := result.Add(key, entry.Room)

		for _, u := range entry.Users {
			user, err := b.resolveOrCreateUser(ctx, u)
			if err != nil {
				metrics.BatchesTotal.WithLabelValues("users", "failure").Inc()
				return nil, "", err
			}
			user.Host, user.Manager = b.grantHostAndManager(ctx, entry.Room.ID, entry.Room.FolderID, user.ID)
			out.Users = append(out.Users, *user)
			b.userProvisioned(ctx, key, entry.Room.ID, *user)
		}
	}

	metrics.BatchesTotal.WithLabelValues("users", "success").Inc()
	slog.InfoContext(ctx, "users created", "rooms", result.Len(), "users", len(b.users))
	return result, b.client.Session(), nil
}

// verifyOrg rejects requests for an org other than the caller's own.
func verifyOrg(callerOrg, org string) error {
	if callerOrg == "" || !strings.EqualFold(callerOrg, org) {
		return domain.NewUnauthorizedError(fmt.Sprintf("caller is not allowed to act on behalf of org %q", org))
	}
	return nil
}

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError("invalid request", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return domain.NewValidationError("invalid request: " + strings.Join(msgs, ", "))
}

// provisioningFailure turns a remote status error from a create step into a
// ProvisioningError. Transport and authentication errors pass through.
func provisioningFailure(message string, err error) error {
	if domain.GetErrorType(err) == domain.ErrorTypeRemoteAPI {
		return domain.NewProvisioningError(message, "", err)
	}
	return err
}

func (b *batch) roomProvisioned(ctx context.Context, key string, room models.RoomRecord) {
	err := b.events.SendRoomProvisioned(ctx, models.RoomProvisionedMessage{Org: b.org, RoomKey: key, Room: room})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish room event", logging.ErrKey, err, "room_key", key)
	}
}

func (b *batch) userProvisioned(ctx context.Context, key, roomID string, user models.UserRecord) {
	err := b.events.SendUserProvisioned(ctx, models.UserProvisionedMessage{Org: b.org, RoomKey: key, RoomID: roomID, User: user})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish user event", logging.ErrKey, err, "room_key", key, "user_id", user.ID)
	}
}

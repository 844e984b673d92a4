package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/google/uuid"

	"tixbay/internal/apperrors"
	"tixbay/internal/helpers"
	"tixbay/internal/models"
	"tixbay/internal/realtime"
)

// OrganizerService covers the event-management surface: an organizer's own
// event list, creation, the status lifecycle, and deletion.
type OrganizerService struct {
	eventsRepo models.EventsRepo
	feed       ChangePublisher
	cld        *cloudinary.Cloudinary
	logger     *slog.Logger
}

func NewOrganizerService(eventsRepo models.EventsRepo, feed ChangePublisher, cld *cloudinary.Cloudinary, logger *slog.Logger) *OrganizerService {
	return &OrganizerService{
		eventsRepo: eventsRepo,
		feed:       feed,
		cld:        cld,
		logger:     logger,
	}
}

func (os *OrganizerService) ListMyEvents(ctx context.Context, organizerID uuid.UUID, accessToken string) ([]models.Event, error) {
	if organizerID == uuid.Nil || accessToken == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return os.eventsRepo.ListByOrganizer(ctx, organizerID, accessToken)
}

// CreateEvent stores a new event owned by the caller. New events start as
// Draft unless the caller explicitly publishes immediately; posterImage,
// when present, is uploaded before the row is written so the event never
// exists without its poster URL.
func (os *OrganizerService) CreateEvent(ctx context.Context, organizerID uuid.UUID, event *models.Event, posterImage string, accessToken string) (*models.Event, error) {
	if organizerID == uuid.Nil || accessToken == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}

	event.OrganizerID = organizerID
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = models.EventDraft
	}
	if event.Status != models.EventDraft && event.Status != models.EventPublished {
		return nil, apperrors.Validation("new events can only start as Draft or Published")
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := models.Validate.Struct(event); err != nil {
		return nil, err
	}

	if posterImage != "" && os.cld != nil {
		url, err := helpers.UploadPoster(ctx, os.cld, posterImage)
		if err != nil {
			return nil, fmt.Errorf("poster upload failed: %v", err)
		}
		event.PosterURL = url
	}

	created, err := os.eventsRepo.CreateEvent(ctx, event, accessToken)
	if err != nil {
		return nil, err
	}

	os.feed.PublishRow(ctx, models.EventsTable, realtime.OpInsert, created.ID.String(), created)
	return created, nil
}

// UpdateEventStatus applies one lifecycle step. Illegal transitions (for
// example reviving a cancelled event) are rejected before any write.
func (os *OrganizerService) UpdateEventStatus(ctx context.Context, organizerID, eventID uuid.UUID, next models.EventStatus, accessToken string) (*models.Event, error) {
	if organizerID == uuid.Nil || accessToken == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}
	if !next.Valid() {
		return nil, apperrors.Validation("unknown event status %q", next)
	}

	current, err := os.eventsRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current.OrganizerID != organizerID {
		return nil, apperrors.ErrEventNotFound
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.Validation("event cannot move from %s to %s", current.Status, next)
	}

	updated, err := os.eventsRepo.UpdateEventStatus(ctx, eventID, organizerID, next, accessToken)
	if err != nil {
		return nil, err
	}

	os.feed.PublishRow(ctx, models.EventsTable, realtime.OpUpdate, updated.ID.String(), updated)
	return updated, nil
}

// DeleteEvent removes an event the caller owns. Deleting someone else's
// event, or one already gone, reports deleted=false without an error; the
// delete notification still goes out so any stale view drops the row.
func (os *OrganizerService) DeleteEvent(ctx context.Context, organizerID, eventID uuid.UUID, accessToken string) (bool, error) {
	if organizerID == uuid.Nil || accessToken == "" {
		return false, apperrors.ErrAuthenticationRequired
	}

	deleted, err := os.eventsRepo.DeleteEvent(ctx, eventID, organizerID, accessToken)
	if err != nil {
		return false, err
	}
	if deleted {
		os.feed.PublishRow(ctx, models.EventsTable, realtime.OpDelete, eventID.String(), nil)
	}
	return deleted, nil
}

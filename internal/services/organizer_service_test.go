package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tixbay/internal/apperrors"
	"tixbay/internal/models"
	"tixbay/internal/realtime"
)

func newOrganizerFixture(events ...*models.Event) (*OrganizerService, *fakeEventsRepo, *fakeFeed) {
	repo := &fakeEventsRepo{events: map[uuid.UUID]*models.Event{}}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	feed := &fakeFeed{}
	svc := NewOrganizerService(repo, feed, nil, testLogger())
	return svc, repo, feed
}

func draftEvent(organizerID uuid.UUID) *models.Event {
	return &models.Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Title:       "Accra Art Fair",
		Category:    models.CategoryArt,
		Status:      models.EventDraft,
		Date:        "2026-10-01",
		Venue:       "Osu Gallery",
	}
}

func TestCreateEventDefaultsToDraft(t *testing.T) {
	svc, repo, feed := newOrganizerFixture()
	organizerID := uuid.New()

	created, err := svc.CreateEvent(context.Background(), organizerID, &models.Event{
		Title:    "Tech Summit",
		Category: models.CategoryConference,
		Date:     "2026-11-20",
		Venue:    "AICC",
	}, "", "tok")
	require.NoError(t, err)

	assert.Equal(t, models.EventDraft, created.Status)
	assert.Equal(t, organizerID, created.OrganizerID)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Contains(t, repo.events, created.ID)
	assert.Equal(t, 1, feed.count(models.EventsTable, realtime.OpInsert))
}

func TestCreateEventRejectsCancelledStart(t *testing.T) {
	svc, _, _ := newOrganizerFixture()

	_, err := svc.CreateEvent(context.Background(), uuid.New(), &models.Event{
		Title:    "Doomed",
		Category: models.CategoryOther,
		Status:   models.EventCancelled,
		Date:     "2026-11-20",
		Venue:    "Nowhere",
	}, "", "tok")
	require.Error(t, err)
}

func TestUpdateEventStatusFollowsLifecycle(t *testing.T) {
	organizerID := uuid.New()
	event := draftEvent(organizerID)
	svc, _, feed := newOrganizerFixture(event)

	updated, err := svc.UpdateEventStatus(context.Background(), organizerID, event.ID, models.EventPublished, "tok")
	require.NoError(t, err)
	assert.Equal(t, models.EventPublished, updated.Status)
	assert.Equal(t, 1, feed.count(models.EventsTable, realtime.OpUpdate))
}

func TestUpdateEventStatusRejectsIllegalTransition(t *testing.T) {
	organizerID := uuid.New()
	event := draftEvent(organizerID)
	event.Status = models.EventCancelled
	svc, _, feed := newOrganizerFixture(event)

	_, err := svc.UpdateEventStatus(context.Background(), organizerID, event.ID, models.EventPublished, "tok")
	require.Error(t, err, "a cancelled event cannot be revived")
	assert.Equal(t, 0, feed.count(models.EventsTable, realtime.OpUpdate))
}

func TestUpdateEventStatusHidesForeignEvents(t *testing.T) {
	event := draftEvent(uuid.New())
	svc, _, _ := newOrganizerFixture(event)

	_, err := svc.UpdateEventStatus(context.Background(), uuid.New(), event.ID, models.EventPublished, "tok")
	require.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestDeleteEventIsNoopForNonOwner(t *testing.T) {
	event := draftEvent(uuid.New())
	svc, repo, feed := newOrganizerFixture(event)

	deleted, err := svc.DeleteEvent(context.Background(), uuid.New(), event.ID, "tok")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Contains(t, repo.events, event.ID, "non-owner delete must not remove the event")
	assert.Equal(t, 0, feed.count(models.EventsTable, realtime.OpDelete))
}

func TestDeleteEventRemovesOwnEventAndNotifies(t *testing.T) {
	organizerID := uuid.New()
	event := draftEvent(organizerID)
	svc, repo, feed := newOrganizerFixture(event)

	deleted, err := svc.DeleteEvent(context.Background(), organizerID, event.ID, "tok")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NotContains(t, repo.events, event.ID)
	assert.Equal(t, 1, feed.count(models.EventsTable, realtime.OpDelete))
}

func TestListMyEventsRequiresAuthentication(t *testing.T) {
	svc, _, _ := newOrganizerFixture()

	_, err := svc.ListMyEvents(context.Background(), uuid.Nil, "")
	require.ErrorIs(t, err, apperrors.ErrAuthenticationRequired)
}

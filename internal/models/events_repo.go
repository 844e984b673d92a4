package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"tixbay/internal/apperrors"
)

type EventsRepo interface {
	// ListPublished returns one page of upcoming published events, date
	// ascending, optionally narrowed to one category, plus the total count
	// across all pages. An empty result is an empty slice, not an error.
	ListPublished(ctx context.Context, category EventCategory, offset, limit int) ([]Event, int64, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketType, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, accessToken string) ([]Event, error)
	CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error)
	UpdateEventStatus(ctx context.Context, eventID, organizerID uuid.UUID, status EventStatus, accessToken string) (*Event, error)
	// DeleteEvent is constrained to (event id, organizer id); deleting an
	// event you do not own is a no-op, not an error.
	DeleteEvent(ctx context.Context, eventID, organizerID uuid.UUID, accessToken string) (bool, error)
}

func (su *SupabaseRepo) ListPublished(ctx context.Context, category EventCategory, offset, limit int) ([]Event, int64, error) {
	query := su.supabaseClient.From(EventsTable).
		Select("*", "exact", false).
		Eq("status", string(EventPublished)).
		Gte("date", time.Now().Format("2006-01-02"))

	if category != "" {
		query = query.Eq("category", string(category))
	}

	raw, count, err := query.
		Order("date", &postgrest.OrderOpts{Ascending: true}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, 0, apperrors.Backend(err)
	}

	events := []Event{}
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}
	return events, count, nil
}

func (su *SupabaseRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	if id == uuid.Nil {
		return nil, apperrors.ErrEventNotFound
	}

	raw, _, err := su.supabaseClient.From(EventsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}
	if len(events) == 0 {
		return nil, apperrors.ErrEventNotFound
	}

	event := events[0]
	types, err := su.ListTicketTypes(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.TicketTypes = types
	return &event, nil
}

func (su *SupabaseRepo) ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	raw, _, err := su.supabaseClient.From(TicketTypesTable).
		Select("*", "", false).
		Eq("event_id", eventID.String()).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	types := []TicketType{}
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket type rows: %v", err)
	}
	return types, nil
}

func (su *SupabaseRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, accessToken string) ([]Event, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	raw, _, err := client.From(EventsTable).
		Select("*", "exact", false).
		Eq("organizer_id", organizerID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	events := []Event{}
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}
	return events, nil
}

func (su *SupabaseRepo) CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	row := map[string]interface{}{
		"id":           event.ID,
		"organizer_id": event.OrganizerID,
		"title":        event.Title,
		"description":  event.Description,
		"category":     event.Category,
		"status":       event.Status,
		"date":         event.Date,
		"time":         event.Time,
		"venue":        event.Venue,
		"ticket_price": event.TicketPrice,
		"capacity":     event.Capacity,
		"poster_url":   event.PosterURL,
		"created_at":   event.CreatedAt,
		"updated_at":   event.UpdatedAt,
	}

	raw, count, err := client.From(EventsTable).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, apperrors.Translate(err)
	}

	var created []Event
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created event: %v", err)
	}
	if count == 0 || len(created) == 0 {
		return nil, apperrors.Backend(fmt.Errorf("no event data returned after insert"))
	}
	created[0].TicketTypes = event.TicketTypes
	return &created[0], nil
}

func (su *SupabaseRepo) UpdateEventStatus(ctx context.Context, eventID, organizerID uuid.UUID, status EventStatus, accessToken string) (*Event, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	raw, count, err := client.From(EventsTable).
		Update(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}, "", "exact").
		Eq("id", eventID.String()).
		Eq("organizer_id", organizerID.String()).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}
	if count == 0 {
		return nil, apperrors.ErrEventNotFound
	}

	var updated []Event
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated event: %v", err)
	}
	if len(updated) == 0 {
		return nil, apperrors.ErrEventNotFound
	}
	return &updated[0], nil
}

func (su *SupabaseRepo) DeleteEvent(ctx context.Context, eventID, organizerID uuid.UUID, accessToken string) (bool, error) {
	if eventID == uuid.Nil || organizerID == uuid.Nil {
		return false, fmt.Errorf("invalid event or organizer ID")
	}

	client, err := su.client(accessToken)
	if err != nil {
		return false, apperrors.Backend(err)
	}

	_, count, err := client.From(EventsTable).
		Delete("", "exact").
		Eq("id", eventID.String()).
		Eq("organizer_id", organizerID.String()).
		Execute()
	if err != nil {
		return false, apperrors.Backend(err)
	}

	return count > 0, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventDraft     EventStatus = "Draft"
	EventPublished EventStatus = "Published"
	EventCancelled EventStatus = "Cancelled"
)

// eventTransitions is the explicit transition table for event status.
// Every status change goes through CanTransitionTo; nothing leaves
// Cancelled.
var eventTransitions = map[EventStatus][]EventStatus{
	EventDraft:     {EventPublished, EventCancelled},
	EventPublished: {EventCancelled},
	EventCancelled: {},
}

func (s EventStatus) Valid() bool {
	_, ok := eventTransitions[s]
	return ok
}

func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	for _, allowed := range eventTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type EventCategory string

const (
	CategoryConcert    EventCategory = "concert"
	CategoryConference EventCategory = "conference"
	CategoryArt        EventCategory = "art"
	CategorySports     EventCategory = "sports"
	CategoryWorkshop   EventCategory = "workshop"
	CategoryWebinar    EventCategory = "webinar"
	CategoryOther      EventCategory = "other"
)

type Event struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	OrganizerID uuid.UUID     `db:"organizer_id" json:"organizer_id"`
	Title       string        `db:"title" json:"title" validate:"required"`
	Description string        `db:"description" json:"description"`
	Category    EventCategory `db:"category" json:"category" validate:"required,oneof=concert conference art sports workshop webinar other"`
	Status      EventStatus   `db:"status" json:"status"`
	Date        string        `db:"date" json:"date" validate:"required"` // YYYY-MM-DD
	Time        string        `db:"time" json:"time"`                     // HH:MM (24h)
	Venue       string        `db:"venue" json:"venue" validate:"required"`
	TicketPrice float64       `db:"ticket_price" json:"ticket_price"`
	Capacity    int           `db:"capacity" json:"capacity"`
	PosterURL   string        `db:"poster_url" json:"poster_url,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`

	// Loaded from ticket_types on detail fetches; not a column.
	TicketTypes []TicketType `db:"-" json:"ticket_types,omitempty"`
}

// Key satisfies the realtime reducer.
func (e Event) Key() string {
	return e.ID.String()
}

// TicketType is a priced admission class belonging to one event. Once
// tickets have been sold against it, price and quantity should be treated
// as immutable.
type TicketType struct {
	ID             uuid.UUID `db:"id" json:"id"`
	EventID        uuid.UUID `db:"event_id" json:"event_id"`
	Name           string    `db:"name" json:"name" validate:"required"`
	Description    string    `db:"description" json:"description"`
	Price          float64   `db:"price" json:"price" validate:"gte=0"`
	Quantity       int       `db:"quantity" json:"quantity" validate:"gte=0"`
	MaxPerCustomer int       `db:"max_per_customer" json:"max_per_customer" validate:"gte=1"`
	AvailableFrom  time.Time `db:"available_from" json:"available_from"`
	AvailableUntil time.Time `db:"available_until" json:"available_until"`
}

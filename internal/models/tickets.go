package models

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketValid       TicketStatus = "Valid"
	TicketUsed        TicketStatus = "Used"
	TicketTransferred TicketStatus = "Transferred"
	TicketCancelled   TicketStatus = "Cancelled"
)

// ticketTransitions makes the implicit ticket lifecycle explicit. Transfer
// and check-in are only reachable from Valid; nothing leaves a terminal
// state. A Used ticket is deliberately not transferable.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketValid:       {TicketUsed, TicketTransferred, TicketCancelled},
	TicketUsed:        {},
	TicketTransferred: {},
	TicketCancelled:   {},
}

func (s TicketStatus) Valid() bool {
	_, ok := ticketTransitions[s]
	return ok
}

func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transferable reports whether a transfer affordance may be offered at all.
func (s TicketStatus) Transferable() bool {
	return s == TicketValid
}

type Ticket struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	EventID         uuid.UUID    `db:"event_id" json:"event_id"`
	TicketTypeID    uuid.UUID    `db:"ticket_type_id" json:"ticket_type_id"`
	UserID          uuid.UUID    `db:"user_id" json:"user_id"`
	PurchaseID      uuid.UUID    `db:"purchase_id" json:"purchase_id"`
	Status          TicketStatus `db:"status" json:"status"`
	QRCode          string       `db:"qr_code" json:"qr_code"`
	Price           float64      `db:"price" json:"price"`
	PromoCodeUsed   string       `db:"promo_code_used" json:"promo_code_used,omitempty"`
	TransferredFrom string       `db:"transferred_from" json:"transferred_from,omitempty"`
	TransferredTo   string       `db:"transferred_to" json:"transferred_to,omitempty"`
	TransferredAt   *time.Time   `db:"transferred_at" json:"transferred_at,omitempty"`
	UsedAt          *time.Time   `db:"used_at" json:"used_at,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
}

func (t Ticket) Key() string {
	return t.ID.String()
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "Pending"
	PurchaseCompleted PurchaseStatus = "Completed"
	PurchaseFailed    PurchaseStatus = "Failed"
)

// PurchaseLine is one requested quantity of a ticket type.
type PurchaseLine struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"gte=0"`
}

type Purchase struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	UserID         uuid.UUID      `db:"user_id" json:"user_id"`
	EventID        uuid.UUID      `db:"event_id" json:"event_id"`
	Lines          []PurchaseLine `db:"lines" json:"lines"`
	TotalAmount    float64        `db:"total_amount" json:"total_amount"`
	DiscountAmount float64        `db:"discount_amount" json:"discount_amount"`
	FinalAmount    float64        `db:"final_amount" json:"final_amount"`
	PromoCode      string         `db:"promo_code" json:"promo_code,omitempty"`
	Status         PurchaseStatus `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	CompletedAt    *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
}

type TransferStatus string

const (
	TransferPending   TransferStatus = "Pending"
	TransferCompleted TransferStatus = "Completed"
	TransferCancelled TransferStatus = "Cancelled"
)

type TicketTransfer struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	TicketID     uuid.UUID      `db:"ticket_id" json:"ticket_id"`
	FromUserID   uuid.UUID      `db:"from_user_id" json:"from_user_id"`
	ToEmail      string         `db:"to_email" json:"to_email" validate:"required,email"`
	ToUserID     *uuid.UUID     `db:"to_user_id" json:"to_user_id,omitempty"`
	Status       TransferStatus `db:"status" json:"status"`
	TransferCode string         `db:"transfer_code" json:"transfer_code"`
	ExpiresAt    time.Time      `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
}

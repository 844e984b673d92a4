package models

import (
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "Percentage"
	DiscountFixed      DiscountType = "Fixed"
)

// PromoCode is authored outside this application and read-only here.
type PromoCode struct {
	ID                uuid.UUID    `db:"id" json:"id"`
	Code              string       `db:"code" json:"code"`
	DiscountType      DiscountType `db:"discount_type" json:"discount_type"`
	DiscountValue     float64      `db:"discount_value" json:"discount_value"`
	ValidFrom         time.Time    `db:"valid_from" json:"valid_from"`
	ValidUntil        time.Time    `db:"valid_until" json:"valid_until"`
	MaxUses           int          `db:"max_uses" json:"max_uses"` // 0 = uncapped
	CurrentUses       int          `db:"current_uses" json:"current_uses"`
	MinPurchaseAmount float64      `db:"min_purchase_amount" json:"min_purchase_amount"`

	// Empty slices mean no restriction.
	ApplicableEventIDs    []uuid.UUID `db:"applicable_event_ids" json:"applicable_event_ids,omitempty"`
	ApplicableTicketTypes []uuid.UUID `db:"applicable_ticket_types" json:"applicable_ticket_types,omitempty"`
}

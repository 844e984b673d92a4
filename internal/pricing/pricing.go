// Package pricing computes order totals for a ticket selection. It is pure:
// no clock other than the one passed in, no I/O, no mutation of its inputs.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tixbay/internal/apperrors"
	"tixbay/internal/models"
)

// Selection maps a ticket-type id to the requested quantity. It is
// transient client state and never persisted directly.
type Selection map[uuid.UUID]int

// TotalQuantity sums the requested quantities.
func (s Selection) TotalQuantity() int {
	total := 0
	for _, q := range s {
		total += q
	}
	return total
}

// Quote is the priced outcome of a selection. Amounts are rounded to
// cents; Total is never negative and never exceeds Subtotal.
type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// ValidateSelection rejects selections before any pricing happens:
// negative quantities, quantities over a type's per-customer cap, or
// references to ticket types the event does not have.
func ValidateSelection(ticketTypes []models.TicketType, selection Selection) error {
	if selection.TotalQuantity() == 0 {
		return apperrors.ErrEmptySelection
	}

	byID := make(map[uuid.UUID]models.TicketType, len(ticketTypes))
	for _, tt := range ticketTypes {
		byID[tt.ID] = tt
	}

	for id, quantity := range selection {
		tt, ok := byID[id]
		if !ok {
			return apperrors.ErrQuantityExceedsLimit
		}
		if quantity < 0 {
			return apperrors.ErrQuantityExceedsLimit
		}
		if tt.MaxPerCustomer > 0 && quantity > tt.MaxPerCustomer {
			return apperrors.ErrQuantityExceedsLimit
		}
	}
	return nil
}

// ValidatePromo decides whether a promo may be applied at all: the code
// must be inside its validity window, under its usage cap, and — when it
// is restricted — applicable to the event being purchased. The minimum
// purchase amount is not checked here; a promo below minimum is applied
// with zero effect (discount 0), matching the checkout behaviour.
func ValidatePromo(promo *models.PromoCode, eventID uuid.UUID, now time.Time) error {
	if promo == nil {
		return apperrors.ErrInvalidPromoCode
	}
	if now.Before(promo.ValidFrom) || now.After(promo.ValidUntil) {
		return apperrors.ErrInvalidPromoCode
	}
	if promo.MaxUses > 0 && promo.CurrentUses >= promo.MaxUses {
		return apperrors.ErrInvalidPromoCode
	}
	if len(promo.ApplicableEventIDs) > 0 {
		found := false
		for _, id := range promo.ApplicableEventIDs {
			if id == eventID {
				found = true
				break
			}
		}
		if !found {
			return apperrors.ErrInvalidPromoCode
		}
	}
	return nil
}

// Compute prices a validated selection. promo may be nil.
func Compute(ticketTypes []models.TicketType, selection Selection, promo *models.PromoCode) Quote {
	priceByID := make(map[uuid.UUID]decimal.Decimal, len(ticketTypes))
	for _, tt := range ticketTypes {
		priceByID[tt.ID] = decimal.NewFromFloat(tt.Price)
	}

	subtotal := decimal.Zero
	for id, quantity := range selection {
		if quantity <= 0 {
			continue
		}
		price, ok := priceByID[id]
		if !ok {
			continue
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
	}

	discount := decimal.Zero
	if promo != nil {
		min := decimal.NewFromFloat(promo.MinPurchaseAmount)
		if promo.MinPurchaseAmount <= 0 || subtotal.GreaterThanOrEqual(min) {
			switch promo.DiscountType {
			case models.DiscountPercentage:
				discount = subtotal.Mul(decimal.NewFromFloat(promo.DiscountValue)).Div(decimal.NewFromInt(100))
			case models.DiscountFixed:
				discount = decimal.NewFromFloat(promo.DiscountValue)
			}
		}
	}

	// Discount is never negative and never pushes the total below zero.
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	total := subtotal.Sub(discount)

	return Quote{
		Subtotal: subtotal.Round(2).InexactFloat64(),
		Discount: discount.Round(2).InexactFloat64(),
		Total:    total.Round(2).InexactFloat64(),
	}
}

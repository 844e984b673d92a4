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

type TicketsRepo interface {
	// CreatePurchase submits the purchase row and its tickets as one
	// logical operation. The tickets come back as stored.
	CreatePurchase(ctx context.Context, purchase *Purchase, tickets []Ticket, accessToken string) ([]Ticket, error)
	ListTicketsByOwner(ctx context.Context, userID uuid.UUID, accessToken string) ([]Ticket, error)
	GetTicketByID(ctx context.Context, ticketID uuid.UUID, accessToken string) (*Ticket, error)
	CreateTransfer(ctx context.Context, transfer *TicketTransfer, accessToken string) (*TicketTransfer, error)
	// MarkTransferred flips the ticket to Transferred and records the
	// recipient, constrained to the current owner.
	MarkTransferred(ctx context.Context, ticketID, ownerID uuid.UUID, toEmail string, accessToken string) (*Ticket, error)
	GetPromoByCode(ctx context.Context, code string) (*PromoCode, error)
	IncrementPromoUsage(ctx context.Context, promoID uuid.UUID, accessToken string) error
}

func (su *SupabaseRepo) CreatePurchase(ctx context.Context, purchase *Purchase, tickets []Ticket, accessToken string) ([]Ticket, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	purchaseRow := map[string]interface{}{
		"id":              purchase.ID,
		"user_id":         purchase.UserID,
		"event_id":        purchase.EventID,
		"lines":           purchase.Lines,
		"total_amount":    purchase.TotalAmount,
		"discount_amount": purchase.DiscountAmount,
		"final_amount":    purchase.FinalAmount,
		"promo_code":      purchase.PromoCode,
		"status":          purchase.Status,
		"created_at":      purchase.CreatedAt,
		"completed_at":    purchase.CompletedAt,
	}

	_, count, err := client.From(PurchasesTable).
		Insert(purchaseRow, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, apperrors.Translate(err)
	}
	if count == 0 {
		return nil, apperrors.Backend(fmt.Errorf("no purchase row returned after insert"))
	}

	rows := make([]map[string]interface{}, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, map[string]interface{}{
			"id":              t.ID,
			"event_id":        t.EventID,
			"ticket_type_id":  t.TicketTypeID,
			"user_id":         t.UserID,
			"purchase_id":     t.PurchaseID,
			"status":          t.Status,
			"qr_code":         t.QRCode,
			"price":           t.Price,
			"promo_code_used": t.PromoCodeUsed,
			"created_at":      t.CreatedAt,
		})
	}

	raw, _, err := client.From(TicketsTable).
		Insert(rows, false, "", "", "exact").
		Execute()
	if err != nil {
		// The purchase row exists without tickets; mark it failed so it is
		// never mistaken for a completed sale.
		_, _, _ = client.From(PurchasesTable).
			Update(map[string]interface{}{"status": PurchaseFailed}, "", "").
			Eq("id", purchase.ID.String()).
			Execute()
		return nil, apperrors.Translate(err)
	}

	var created []Ticket
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket rows: %v", err)
	}
	return created, nil
}

func (su *SupabaseRepo) ListTicketsByOwner(ctx context.Context, userID uuid.UUID, accessToken string) ([]Ticket, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	raw, _, err := client.From(TicketsTable).
		Select("*", "exact", false).
		Eq("user_id", userID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	tickets := []Ticket{}
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket rows: %v", err)
	}
	return tickets, nil
}

func (su *SupabaseRepo) GetTicketByID(ctx context.Context, ticketID uuid.UUID, accessToken string) (*Ticket, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	raw, _, err := client.From(TicketsTable).
		Select("*", "", false).
		Eq("id", ticketID.String()).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	var tickets []Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket rows: %v", err)
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("ticket not found")
	}
	return &tickets[0], nil
}

func (su *SupabaseRepo) CreateTransfer(ctx context.Context, transfer *TicketTransfer, accessToken string) (*TicketTransfer, error) {
	if err := Validate.Struct(transfer); err != nil {
		return nil, err
	}

	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	row := map[string]interface{}{
		"id":            transfer.ID,
		"ticket_id":     transfer.TicketID,
		"from_user_id":  transfer.FromUserID,
		"to_email":      transfer.ToEmail,
		"status":        transfer.Status,
		"transfer_code": transfer.TransferCode,
		"expires_at":    transfer.ExpiresAt,
		"created_at":    transfer.CreatedAt,
	}

	raw, count, err := client.From(TransfersTable).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, apperrors.Translate(err)
	}

	var created []TicketTransfer
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transfer row: %v", err)
	}
	if count == 0 || len(created) == 0 {
		return nil, apperrors.Backend(fmt.Errorf("no transfer data returned after insert"))
	}
	return &created[0], nil
}

func (su *SupabaseRepo) MarkTransferred(ctx context.Context, ticketID, ownerID uuid.UUID, toEmail string, accessToken string) (*Ticket, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	now := time.Now()
	raw, count, err := client.From(TicketsTable).
		Update(map[string]interface{}{
			"status":         TicketTransferred,
			"transferred_to": toEmail,
			"transferred_at": now,
		}, "", "exact").
		Eq("id", ticketID.String()).
		Eq("user_id", ownerID.String()).
		Eq("status", string(TicketValid)).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}
	// Zero rows means the ticket was already transferred, used, or is not
	// ours; the status filter makes concurrent transfers settle on one
	// winner.
	if count == 0 {
		return nil, apperrors.ErrTransferNotAllowed
	}

	var updated []Ticket
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated ticket: %v", err)
	}
	if len(updated) == 0 {
		return nil, apperrors.ErrTransferNotAllowed
	}
	return &updated[0], nil
}

func (su *SupabaseRepo) GetPromoByCode(ctx context.Context, code string) (*PromoCode, error) {
	raw, _, err := su.supabaseClient.From(PromoCodesTable).
		Select("*", "", false).
		Eq("code", code).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	var promos []PromoCode
	if err := json.Unmarshal(raw, &promos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal promo rows: %v", err)
	}
	if len(promos) == 0 {
		return nil, apperrors.ErrInvalidPromoCode
	}
	return &promos[0], nil
}

// IncrementPromoUsage bumps current_uses through a database function so
// concurrent purchases never lose an increment to a read-then-write race.
func (su *SupabaseRepo) IncrementPromoUsage(ctx context.Context, promoID uuid.UUID, accessToken string) error {
	client, err := su.client(accessToken)
	if err != nil {
		return apperrors.Backend(err)
	}

	result := client.Rpc("increment_promo_usage", "", map[string]interface{}{
		"promo_id": promoID.String(),
	})
	if result == "" {
		return apperrors.Backend(fmt.Errorf("increment_promo_usage rpc returned no result for promo %s", promoID))
	}
	return nil
}

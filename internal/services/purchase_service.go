package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tixbay/internal/apperrors"
	"tixbay/internal/helpers"
	"tixbay/internal/models"
	"tixbay/internal/monitoring"
	"tixbay/internal/mq"
	"tixbay/internal/pricing"
	"tixbay/internal/realtime"
)

// transferWindow is how long a transfer invitation stays claimable.
const transferWindow = 72 * time.Hour

// ChangePublisher fans row changes out to live views.
type ChangePublisher interface {
	PublishRow(ctx context.Context, collection string, op realtime.Op, id string, row any)
}

// Notifier hands purchase and transfer notices to the notification workers.
type Notifier interface {
	TicketsIssued(ctx context.Context, msg mq.TicketsIssuedMessage) error
	TransferRequested(ctx context.Context, msg mq.TransferRequestedMessage) error
}

type PurchaseService struct {
	ticketsRepo models.TicketsRepo
	eventsRepo  models.EventsRepo
	feed        ChangePublisher
	notifier    Notifier
	logger      *slog.Logger

	// Guards each ticket against a second transfer while one is in flight
	// in this process. The status-constrained update in the repo is the
	// cross-process backstop.
	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
}

func NewPurchaseService(ticketsRepo models.TicketsRepo, eventsRepo models.EventsRepo, feed ChangePublisher, notifier Notifier, logger *slog.Logger) *PurchaseService {
	return &PurchaseService{
		ticketsRepo: ticketsRepo,
		eventsRepo:  eventsRepo,
		feed:        feed,
		notifier:    notifier,
		logger:      logger,
		inFlight:    map[uuid.UUID]bool{},
	}
}

type PurchaseResult struct {
	Purchase *models.Purchase `json:"purchase"`
	Tickets  []models.Ticket  `json:"tickets"`
	Quote    pricing.Quote    `json:"quote"`
}

// PurchaseTickets prices the selection, applies an optional promo code, and
// issues one ticket per requested seat. A failed promo lookup aborts the
// purchase rather than silently charging full price.
func (ps *PurchaseService) PurchaseTickets(ctx context.Context, userID, eventID uuid.UUID, selection pricing.Selection, promoCode string, accessToken string) (*PurchaseResult, error) {
	if userID == uuid.Nil || accessToken == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}

	event, err := ps.eventsRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventPublished {
		return nil, apperrors.Validation("event is not on sale")
	}

	if err := pricing.ValidateSelection(event.TicketTypes, selection); err != nil {
		return nil, err
	}

	var promo *models.PromoCode
	if promoCode != "" {
		promo, err = ps.ticketsRepo.GetPromoByCode(ctx, promoCode)
		if err != nil {
			return nil, err
		}
		if err := pricing.ValidatePromo(promo, eventID, time.Now()); err != nil {
			return nil, err
		}
	}

	quote := pricing.Compute(event.TicketTypes, selection, promo)

	now := time.Now()
	purchase := &models.Purchase{
		ID:             uuid.New(),
		UserID:         userID,
		EventID:        eventID,
		TotalAmount:    quote.Subtotal,
		DiscountAmount: quote.Discount,
		FinalAmount:    quote.Total,
		PromoCode:      promoCode,
		Status:         models.PurchaseCompleted,
		CreatedAt:      now,
		CompletedAt:    &now,
	}

	priceByType := make(map[uuid.UUID]float64, len(event.TicketTypes))
	for _, tt := range event.TicketTypes {
		priceByType[tt.ID] = tt.Price
	}

	var tickets []models.Ticket
	for typeID, quantity := range selection {
		if quantity <= 0 {
			continue
		}
		purchase.Lines = append(purchase.Lines, models.PurchaseLine{TicketTypeID: typeID, Quantity: quantity})
		for i := 0; i < quantity; i++ {
			tickets = append(tickets, models.Ticket{
				ID:            uuid.New(),
				EventID:       eventID,
				TicketTypeID:  typeID,
				UserID:        userID,
				PurchaseID:    purchase.ID,
				Status:        models.TicketValid,
				QRCode:        helpers.GenerateTicketCode(),
				Price:         priceByType[typeID],
				PromoCodeUsed: promoCode,
				CreatedAt:     now,
			})
		}
	}

	created, err := ps.ticketsRepo.CreatePurchase(ctx, purchase, tickets, accessToken)
	if err != nil {
		monitoring.TrackPurchase("failed")
		return nil, err
	}
	monitoring.TrackPurchase("completed")

	if promo != nil {
		if err := ps.ticketsRepo.IncrementPromoUsage(ctx, promo.ID, accessToken); err != nil {
			ps.logger.Error("Promo usage increment failed", "promo_id", promo.ID, "error", err)
		}
	}

	ps.feed.PublishRow(ctx, models.PurchasesTable, realtime.OpInsert, purchase.ID.String(), purchase)
	for _, t := range created {
		ps.feed.PublishRow(ctx, models.TicketsTable, realtime.OpInsert, t.ID.String(), t)
	}

	ticketIDs := make([]string, 0, len(created))
	for _, t := range created {
		ticketIDs = append(ticketIDs, t.ID.String())
	}
	if err := ps.notifier.TicketsIssued(ctx, mq.TicketsIssuedMessage{
		PurchaseID:  purchase.ID.String(),
		UserID:      userID.String(),
		EventID:     eventID.String(),
		TicketIDs:   ticketIDs,
		FinalAmount: quote.Total,
		PromoCode:   promoCode,
	}); err != nil {
		ps.logger.Error("Purchase notification publish failed", "purchase_id", purchase.ID, "error", err)
	}

	return &PurchaseResult{Purchase: purchase, Tickets: created, Quote: quote}, nil
}

// TransferTicket moves a Valid ticket to another account, identified by
// email. Only the owner of a Valid ticket may transfer it; everything else
// is ErrTransferNotAllowed, including a second transfer attempt while one
// is in flight.
func (ps *PurchaseService) TransferTicket(ctx context.Context, userID, ticketID uuid.UUID, toEmail, accessToken string) (*models.TicketTransfer, error) {
	if userID == uuid.Nil || accessToken == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}
	if !helpers.IsValidEmail(toEmail) {
		return nil, apperrors.Validation("invalid recipient email")
	}

	ps.mu.Lock()
	if ps.inFlight[ticketID] {
		ps.mu.Unlock()
		monitoring.TrackTransfer("rejected")
		return nil, apperrors.ErrTransferNotAllowed
	}
	ps.inFlight[ticketID] = true
	ps.mu.Unlock()
	defer func() {
		ps.mu.Lock()
		delete(ps.inFlight, ticketID)
		ps.mu.Unlock()
	}()

	ticket, err := ps.ticketsRepo.GetTicketByID(ctx, ticketID, accessToken)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID || !ticket.Status.Transferable() {
		monitoring.TrackTransfer("rejected")
		return nil, apperrors.ErrTransferNotAllowed
	}

	transfer := &models.TicketTransfer{
		ID:           uuid.New(),
		TicketID:     ticketID,
		FromUserID:   userID,
		ToEmail:      toEmail,
		Status:       models.TransferPending,
		TransferCode: helpers.GenerateTicketCode(),
		ExpiresAt:    time.Now().Add(transferWindow),
		CreatedAt:    time.Now(),
	}
	created, err := ps.ticketsRepo.CreateTransfer(ctx, transfer, accessToken)
	if err != nil {
		monitoring.TrackTransfer("failed")
		return nil, err
	}

	updated, err := ps.ticketsRepo.MarkTransferred(ctx, ticketID, userID, toEmail, accessToken)
	if err != nil {
		monitoring.TrackTransfer("rejected")
		return nil, err
	}
	monitoring.TrackTransfer("completed")

	ps.feed.PublishRow(ctx, models.TicketsTable, realtime.OpUpdate, updated.ID.String(), updated)
	ps.feed.PublishRow(ctx, models.TransfersTable, realtime.OpInsert, created.ID.String(), created)

	if err := ps.notifier.TransferRequested(ctx, mq.TransferRequestedMessage{
		TransferID:   created.ID.String(),
		TicketID:     ticketID.String(),
		FromUserID:   userID.String(),
		ToEmail:      toEmail,
		TransferCode: created.TransferCode,
		ExpiresAt:    created.ExpiresAt.Format(time.RFC3339),
	}); err != nil {
		ps.logger.Error("Transfer notification publish failed", "transfer_id", created.ID, "error", err)
	}

	return created, nil
}

func (ps *PurchaseService) ListMyTickets(ctx context.Context, userID uuid.UUID, accessToken string) ([]models.Ticket, error) {
	if userID == uuid.Nil || accessToken == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return ps.ticketsRepo.ListTicketsByOwner(ctx, userID, accessToken)
}

// CheckPromo answers the checkout preview: is this code usable for this
// event right now. It does not consume a use.
func (ps *PurchaseService) CheckPromo(ctx context.Context, eventID uuid.UUID, code string) (*models.PromoCode, error) {
	promo, err := ps.ticketsRepo.GetPromoByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidatePromo(promo, eventID, time.Now()); err != nil {
		return nil, err
	}
	return promo, nil
}

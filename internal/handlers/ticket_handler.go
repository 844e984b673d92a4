package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tixbay/internal/apperrors"
	"tixbay/internal/models"
	"tixbay/internal/pricing"
	"tixbay/internal/services"
)

func PurchaseTickets(ps *services.PurchaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		var req struct {
			EventID   string         `json:"event_id" binding:"required"`
			Selection map[string]int `json:"selection" binding:"required"`
			PromoCode string         `json:"promo_code"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		eventID, err := uuid.Parse(req.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		selection := pricing.Selection{}
		for rawID, quantity := range req.Selection {
			typeID, err := uuid.Parse(rawID)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid ticket type ID in selection"))
				return
			}
			selection[typeID] = quantity
		}

		res, err := ps.PurchaseTickets(c.Request.Context(), userID, eventID, selection, req.PromoCode, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(res, "Tickets purchased successfully"))
	}
}

func TransferTicket(ps *services.PurchaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		ticketID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid ticket ID format"))
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		var req struct {
			ToEmail string `json:"to_email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		transfer, err := ps.TransferTicket(c.Request.Context(), userID, ticketID, req.ToEmail, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(transfer, "Transfer initiated, the recipient has been notified"))
	}
}

func MyTickets(ps *services.PurchaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		tickets, err := ps.ListMyTickets(c.Request.Context(), userID, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(tickets, ""))
	}
}

// CheckPromo is the checkout preview: it reports whether a code is usable
// for an event without consuming a use.
func CheckPromo(ps *services.PurchaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		code := c.Param("code")
		promo, err := ps.CheckPromo(c.Request.Context(), eventID, code)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"code":           promo.Code,
			"discount_type":  promo.DiscountType,
			"discount_value": promo.DiscountValue,
		}, "Promo code is valid"))
	}
}

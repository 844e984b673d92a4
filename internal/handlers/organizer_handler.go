package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tixbay/internal/apperrors"
	"tixbay/internal/models"
	"tixbay/internal/services"
)

func MyEvents(os *services.OrganizerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		organizerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		events, err := os.ListMyEvents(c.Request.Context(), organizerID, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(events, ""))
	}
}

func CreateEvent(os *services.OrganizerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		var req struct {
			models.Event
			// Base64 data URI or remote URL; uploaded before the row is
			// written.
			PosterImage string `json:"poster_image"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		organizerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		created, err := os.CreateEvent(c.Request.Context(), organizerID, &req.Event, req.PosterImage, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

func UpdateEventStatus(os *services.OrganizerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}
		organizerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		var req struct {
			Status models.EventStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := os.UpdateEventStatus(c.Request.Context(), organizerID, eventID, req.Status, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Event status updated"))
	}
}

func DeleteEvent(os *services.OrganizerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}
		organizerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		deleted, err := os.DeleteEvent(c.Request.Context(), organizerID, eventID, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, models.ErrorResponse("event not found"))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event deleted"))
	}
}

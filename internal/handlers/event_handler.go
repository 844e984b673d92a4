package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tixbay/internal/apperrors"
	"tixbay/internal/models"
	"tixbay/internal/services"
)

func ListEvents(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := models.EventCategory(c.Query("category"))

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
			return
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
			return
		}

		events, total, err := cs.ListPublished(c.Request.Context(), category, offset, limit)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		page := offset/limit + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(events, page, limit, int(total)))
	}
}

func GetEventByID(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := strings.TrimSpace(c.Param("id"))
		if eventID == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("event ID is required"))
			return
		}

		parsedID, err := uuid.Parse(eventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		event, err := cs.GetEvent(c.Request.Context(), parsedID)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func SearchEvents(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))

		filters := models.SearchFilters{
			Category:  models.EventCategory(c.Query("category")),
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
		}
		if raw := c.Query("min_price"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				filters.MinPrice = v
			}
		}
		if raw := c.Query("max_price"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				filters.MaxPrice = v
			}
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				limit = v
			}
		}

		events, err := cs.Search(c.Request.Context(), query, filters, limit)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(events, ""))
	}
}

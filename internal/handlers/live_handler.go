package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tixbay/internal/models"
	"tixbay/internal/realtime"
)

var liveCollections = map[string]bool{
	models.EventsTable:    true,
	models.TicketsTable:   true,
	models.PurchasesTable: true,
}

// LiveChanges streams row changes for one collection as server-sent events.
// The subscription is closed on every exit path: client disconnect, server
// shutdown, or stream error.
func LiveChanges(feed *realtime.Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		collection := c.Param("collection")
		if !liveCollections[collection] {
			c.JSON(http.StatusNotFound, models.ErrorResponse("unknown collection"))
			return
		}

		sub, err := feed.Subscribe(c.Request.Context(), collection)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("live updates unavailable"))
			return
		}
		defer sub.Close()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case change, ok := <-sub.C:
				if !ok {
					return false
				}
				payload, err := json.Marshal(change)
				if err != nil {
					return true
				}
				c.SSEvent("change", string(payload))
				return true
			}
		})
	}
}

package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/inventory"
)

// SeatmapHandler streams live seat_held updates for a single flight over
// server-sent events, backed by the inventory manager's broadcast bus.
type SeatmapHandler struct {
	inventory *inventory.Manager
}

func NewSeatmapHandler(inv *inventory.Manager) *SeatmapHandler {
	return &SeatmapHandler{inventory: inv}
}

// Stream handles GET /v1/seatmap/:flight_id/stream.
func (h *SeatmapHandler) Stream(c *gin.Context) {
	flightID := c.Param("flight_id")
	events, cancel := h.inventory.Subscribe(flightID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w gin.ResponseWriter) bool {
		select {
		case evt, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("seat_held", evt)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

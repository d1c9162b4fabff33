package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/fulfillment"
)

// FulfillmentHandler exposes artifact consumption over HTTP.
type FulfillmentHandler struct {
	fulfillments *fulfillment.Service
}

func NewFulfillmentHandler(fulfillments *fulfillment.Service) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillments: fulfillments}
}

type consumeRequest struct {
	Token    string `json:"token" binding:"required"`
	Location string `json:"location"`
}

// Consume handles POST /v1/fulfillment/consume: a gate or check-in agent
// redeeming a barcode/QR token.
func (h *FulfillmentHandler) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	f, err := h.fulfillments.Consume(c.Request.Context(), req.Token, req.Location)
	if err != nil {
		writeError(c, "fulfillment.consume", err)
		return
	}
	c.JSON(http.StatusOK, f)
}

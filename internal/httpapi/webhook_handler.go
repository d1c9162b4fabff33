package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/order"
	"github.com/ThinkGrid-Labs/altis-engine/internal/payment"
)

// WebhookHandler receives asynchronous payment status callbacks.
type WebhookHandler struct {
	orders   *order.Service
	payments *payment.Orchestrator
}

func NewWebhookHandler(orders *order.Service, payments *payment.Orchestrator) *WebhookHandler {
	return &WebhookHandler{orders: orders, payments: payments}
}

type stripeWebhookRequest struct {
	OrderID  string           `json:"order_id" binding:"required"`
	IntentID string           `json:"intent_id" binding:"required"`
	releaseRequest
}

// StripeWebhook handles POST /v1/webhooks/payments/stripe. Providers are
// expected to retry on non-2xx, so a lookup that times out or meets an open
// breaker surfaces as 503 (any other lookup error as 500) rather than being
// swallowed.
func (h *WebhookHandler) StripeWebhook(c *gin.Context) {
	var req stripeWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	ord, err := h.orders.GetOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		writeError(c, "webhook.stripe", err)
		return
	}
	updated, err := h.payments.HandleWebhook(c.Request.Context(), ord, req.IntentID, payment.InventoryRelease{
		TripID:      req.TripID,
		FlightSeats: req.FlightSeats,
		Seats:       req.Seats,
	})
	if err != nil {
		writeError(c, "webhook.stripe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": updated.ID, "status": updated.Status})
}

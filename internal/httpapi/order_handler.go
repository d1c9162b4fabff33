package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/inventory"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
	"github.com/ThinkGrid-Labs/altis-engine/internal/order"
	"github.com/ThinkGrid-Labs/altis-engine/internal/payment"
)

// OrderHandler exposes order lifecycle operations over HTTP.
type OrderHandler struct {
	orders    *order.Service
	payments  *payment.Orchestrator
	inventory *inventory.Manager
}

func NewOrderHandler(orders *order.Service, payments *payment.Orchestrator, inv *inventory.Manager) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments, inventory: inv}
}

// List handles GET /v1/orders?customer_id=.
func (h *OrderHandler) List(c *gin.Context) {
	customerID := c.Query("customer_id")
	if customerID == "" {
		bindJSONError(c, errMissingQueryParam("customer_id"))
		return
	}
	orders, err := h.orders.ListOrders(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, "order.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	ord, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "order.get", err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// releaseRequest carries the inventory bookkeeping a caller must supply for
// any operation that may release held inventory; this core never persists
// hold state durably (see Hold), so the caller is its source of truth.
type releaseRequest struct {
	TripID      string            `json:"trip_id"`
	FlightSeats map[string]int64  `json:"flight_seats"`
	Seats       map[string]string `json:"seats"`
}

// CreatePaymentIntent handles POST /v1/orders/:id/payment-intent.
func (h *OrderHandler) CreatePaymentIntent(c *gin.Context) {
	ord, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "order.payment_intent", err)
		return
	}
	intent, err := h.payments.CreateIntent(c.Request.Context(), ord)
	if err != nil {
		writeError(c, "order.payment_intent", err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// Pay handles POST /v1/orders/:id/pay.
func (h *OrderHandler) Pay(c *gin.Context) {
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}

	ctx := c.Request.Context()
	orderID := c.Param("id")
	ord, err := h.orders.BeginPayment(ctx, orderID)
	if err != nil {
		writeError(c, "order.pay", err)
		return
	}

	paid, err := h.payments.Pay(ctx, ord, payment.InventoryRelease{
		TripID:      req.TripID,
		FlightSeats: req.FlightSeats,
		Seats:       req.Seats,
	})
	if err != nil {
		writeError(c, "order.pay", err)
		return
	}

	// Fulfillment issuance on PAID is centralized in order.Service.ApplyPaymentOutcome,
	// which both this synchronous path and the payment webhook path route through.
	c.JSON(http.StatusOK, paid)
}

// Cancel handles POST /v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
		releaseRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	ord, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), req.Reason, req.FlightSeats, req.TripID, req.Seats)
	if err != nil {
		writeError(c, "order.cancel", err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// InvoluntaryRefund handles POST /v1/orders/:id/involuntary-refund.
func (h *OrderHandler) InvoluntaryRefund(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
		releaseRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	ord, err := h.orders.InvoluntaryRefund(c.Request.Context(), c.Param("id"), req.Reason, req.FlightSeats, req.TripID, req.Seats)
	if err != nil {
		writeError(c, "order.involuntary_refund", err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// AcceptReaccommodation handles POST /v1/orders/:id/accept-reaccommodation.
func (h *OrderHandler) AcceptReaccommodation(c *gin.Context) {
	var req struct {
		ItemID string `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	ord, err := h.orders.AcceptReaccommodation(c.Request.Context(), c.Param("id"), req.ItemID)
	if err != nil {
		writeError(c, "order.accept_reaccommodation", err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// Reshop handles POST /v1/orders/:id/reshop: swaps a flight item for a
// reshopped alternative at a new price.
func (h *OrderHandler) Reshop(c *gin.Context) {
	var req struct {
		OldItemID string          `json:"old_item_id" binding:"required"`
		NewItem   models.OrderItem `json:"new_item" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	ord, err := h.orders.ChangeFlight(c.Request.Context(), c.Param("id"), req.OldItemID, req.NewItem)
	if err != nil {
		writeError(c, "order.reshop", err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// Customize handles POST /v1/orders/:id/customize: refunds an ancillary
// item the customer no longer wants.
func (h *OrderHandler) Customize(c *gin.Context) {
	var req struct {
		ItemID string `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	ord, err := h.orders.RefundItem(c.Request.Context(), c.Param("id"), req.ItemID)
	if err != nil {
		writeError(c, "order.customize", err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// Fulfillment handles GET /v1/orders/:id/fulfillment.
func (h *OrderHandler) Fulfillment(c *gin.Context) {
	ord, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "order.fulfillment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": ord.ID, "status": ord.Status})
}

// HoldSeat handles POST /v1/holds/seat.
func (h *OrderHandler) HoldSeat(c *gin.Context) {
	var req struct {
		TripID     string `json:"trip_id" binding:"required"`
		FlightID   string `json:"flight_id" binding:"required"`
		SeatNumber string `json:"seat_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	if err := h.inventory.HoldSeat(c.Request.Context(), req.TripID, req.FlightID, req.SeatNumber); err != nil {
		writeError(c, "holds.seat", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "HELD", "trip_id": req.TripID, "flight_id": req.FlightID, "seat_number": req.SeatNumber})
}

func errMissingQueryParam(name string) error {
	return altiserr.NewValidation("request.query", "missing required query parameter: "+name)
}

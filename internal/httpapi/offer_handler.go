package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
	"github.com/ThinkGrid-Labs/altis-engine/internal/offer"
	"github.com/ThinkGrid-Labs/altis-engine/internal/order"
)

// OfferHandler exposes the offer pipeline over HTTP.
type OfferHandler struct {
	offers *offer.Service
	orders *order.Service
}

func NewOfferHandler(offers *offer.Service, orders *order.Service) *OfferHandler {
	return &OfferHandler{offers: offers, orders: orders}
}

type searchOffersRequest struct {
	AirlineID          string               `json:"airline_id" binding:"required"`
	CustomerID         string               `json:"customer_id"`
	Context            models.SearchContext `json:"context"`
	FlightBasePriceNUC int64                `json:"flight_base_price_nuc" binding:"required"`
	FlightProductID    string               `json:"flight_product_id" binding:"required"`
	FlightDisplayName  string               `json:"flight_display_name"`
	SeatUtilisation    float64              `json:"seat_utilisation"`
	Strategies         []offer.Strategy     `json:"strategies"`
}

// Search handles POST /v1/offers/search.
func (h *OfferHandler) Search(c *gin.Context) {
	var req searchOffersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}

	offers, err := h.offers.Search(c.Request.Context(), offer.SearchRequest{
		AirlineID:          req.AirlineID,
		CustomerID:         req.CustomerID,
		Context:            req.Context,
		FlightBasePriceNUC: req.FlightBasePriceNUC,
		FlightProductID:    req.FlightProductID,
		FlightDisplayName:  req.FlightDisplayName,
		SeatUtilisation:    req.SeatUtilisation,
		Strategies:         req.Strategies,
	})
	if err != nil {
		writeError(c, "offer.search", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// Get handles GET /v1/offers/:id.
func (h *OfferHandler) Get(c *gin.Context) {
	off, err := h.offers.GetOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "offer.get", err)
		return
	}
	c.JSON(http.StatusOK, off)
}

// Cancel handles DELETE /v1/offers/:id.
func (h *OfferHandler) Cancel(c *gin.Context) {
	if err := h.offers.CancelOffer(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "offer.cancel", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type acceptOfferRequest struct {
	CustomerID  string                `json:"customer_id" binding:"required"`
	AirlineID   string                `json:"airline_id" binding:"required"`
	Contact     models.ContactInfo    `json:"contact"`
	Travelers   []models.Traveler     `json:"travelers"`
	FlightSeats map[string]int64      `json:"flight_seats"`
}

// Accept handles POST /v1/offers/:id/accept.
func (h *OfferHandler) Accept(c *gin.Context) {
	var req acceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}

	off, err := h.offers.GetOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "offer.accept", err)
		return
	}

	ord, err := h.orders.AcceptOffer(c.Request.Context(), order.AcceptOfferRequest{
		Offer:       off,
		CustomerID:  req.CustomerID,
		AirlineID:   req.AirlineID,
		Contact:     req.Contact,
		Travelers:   req.Travelers,
		FlightSeats: req.FlightSeats,
	})
	if err != nil {
		writeError(c, "offer.accept", err)
		return
	}
	c.JSON(http.StatusCreated, ord)
}

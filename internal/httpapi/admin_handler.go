package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/disruption"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
	"github.com/ThinkGrid-Labs/altis-engine/internal/repository"
)

// AdminHandler exposes operational controls: disruption processing, catalog
// management and business-rule overrides. Not customer-facing; a deployment
// is expected to put these behind an operator-only route group.
type AdminHandler struct {
	disruptions *disruption.Manager
	products    *repository.ProductRepository
	rules       *businessrules.Rules
	rulesRepo   *repository.RulesRepository
}

func NewAdminHandler(disruptions *disruption.Manager, products *repository.ProductRepository, rules *businessrules.Rules, rulesRepo *repository.RulesRepository) *AdminHandler {
	return &AdminHandler{disruptions: disruptions, products: products, rules: rules, rulesRepo: rulesRepo}
}

type triggerDisruptionRequest struct {
	FlightID    string `json:"flight_id" binding:"required"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// TriggerDisruption handles POST /v1/admin/disruptions.
func (h *AdminHandler) TriggerDisruption(c *gin.Context) {
	var req triggerDisruptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	affected, err := h.disruptions.ProcessDisruption(c.Request.Context(), req.FlightID, req.Origin, req.Destination)
	if err != nil {
		writeError(c, "admin.trigger_disruption", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected_orders": affected})
}

type createProductRequest struct {
	AirlineID   string             `json:"airline_id" binding:"required"`
	Kind        models.ProductKind `json:"kind" binding:"required"`
	DisplayName string             `json:"display_name" binding:"required"`
	BasePriceNUC int64             `json:"base_price_nuc" binding:"required"`
	Active      bool               `json:"active"`
}

// CreateProduct handles POST /v1/admin/products.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	p := &models.Product{
		AirlineID:    req.AirlineID,
		Kind:         req.Kind,
		DisplayName:  req.DisplayName,
		BasePriceNUC: req.BasePriceNUC,
		Active:       req.Active,
	}
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		writeError(c, "admin.create_product", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type setRuleOverrideRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// SetRuleOverride handles PUT /v1/admin/rules: persists a business-rule
// override and applies it to the live, in-process Rules value immediately,
// so a running process reflects the change without a restart.
func (h *AdminHandler) SetRuleOverride(c *gin.Context) {
	var req setRuleOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindJSONError(c, err)
		return
	}
	if err := h.rulesRepo.Upsert(c.Request.Context(), req.Key, req.Value); err != nil {
		writeError(c, "admin.set_rule_override", err)
		return
	}
	h.rules.ApplyOverrides([]businessrules.OverrideRow{{Key: req.Key, Value: req.Value}})
	c.JSON(http.StatusOK, gin.H{"key": req.Key, "value": req.Value})
}

package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/availability"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
)

// Handlers bundles every route handler the router wires up.
type Handlers struct {
	Offers      *OfferHandler
	Orders      *OrderHandler
	Fulfillment *FulfillmentHandler
	Admin       *AdminHandler
	Webhooks    *WebhookHandler
	Seatmap     *SeatmapHandler
}

// NewRouter assembles the gin engine: recovery, CORS, request-id, logging
// and metrics run on every request; rate limiting is applied per endpoint
// class (read vs write) once the route is matched.
func NewRouter(h Handlers, avail *availability.Cache, metrics *Metrics, log *logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware(metrics))

	readFallback := newIPLimiters(2, 10)
	writeFallback := newIPLimiters(1, 5)
	readLimit := rateLimitMiddleware(avail, readFallback, defaultReadLimit, log)
	writeLimit := rateLimitMiddleware(avail, writeFallback, defaultWriteLimit, log)

	r.GET("/healthz", healthCheck)
	r.GET("/metrics", metricsHandler())

	v1 := r.Group("/v1")
	{
		offers := v1.Group("/offers")
		{
			offers.POST("/search", writeLimit, h.Offers.Search)
			offers.GET("/:id", readLimit, h.Offers.Get)
			offers.DELETE("/:id", writeLimit, h.Offers.Cancel)
			offers.POST("/:id/accept", writeLimit, h.Offers.Accept)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", readLimit, h.Orders.List)
			orders.GET("/:id", readLimit, h.Orders.Get)
			orders.POST("/:id/payment-intent", writeLimit, h.Orders.CreatePaymentIntent)
			orders.POST("/:id/pay", writeLimit, h.Orders.Pay)
			orders.POST("/:id/cancel", writeLimit, h.Orders.Cancel)
			orders.POST("/:id/involuntary-refund", writeLimit, h.Orders.InvoluntaryRefund)
			orders.POST("/:id/accept-reaccommodation", writeLimit, h.Orders.AcceptReaccommodation)
			orders.POST("/:id/reshop", writeLimit, h.Orders.Reshop)
			orders.POST("/:id/customize", writeLimit, h.Orders.Customize)
			orders.GET("/:id/fulfillment", readLimit, h.Orders.Fulfillment)
		}

		v1.POST("/holds/seat", writeLimit, h.Orders.HoldSeat)
		v1.GET("/seatmap/:flight_id/stream", readLimit, h.Seatmap.Stream)

		v1.POST("/fulfillment/consume", writeLimit, h.Fulfillment.Consume)

		webhooks := v1.Group("/webhooks/payments")
		{
			webhooks.POST("/stripe", h.Webhooks.StripeWebhook)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/disruptions", writeLimit, h.Admin.TriggerDisruption)
			admin.POST("/products", writeLimit, h.Admin.CreateProduct)
			admin.PUT("/rules", writeLimit, h.Admin.SetRuleOverride)
		}
	}

	return r
}

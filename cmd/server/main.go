package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ThinkGrid-Labs/altis-engine/internal/availability"
	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/cache"
	"github.com/ThinkGrid-Labs/altis-engine/internal/config"
	"github.com/ThinkGrid-Labs/altis-engine/internal/disruption"
	"github.com/ThinkGrid-Labs/altis-engine/internal/events"
	"github.com/ThinkGrid-Labs/altis-engine/internal/fulfillment"
	"github.com/ThinkGrid-Labs/altis-engine/internal/httpapi"
	"github.com/ThinkGrid-Labs/altis-engine/internal/inventory"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/offer"
	"github.com/ThinkGrid-Labs/altis-engine/internal/order"
	"github.com/ThinkGrid-Labs/altis-engine/internal/payment"
	"github.com/ThinkGrid-Labs/altis-engine/internal/ranking"
	"github.com/ThinkGrid-Labs/altis-engine/internal/repository"
	"github.com/ThinkGrid-Labs/altis-engine/internal/rules"
)

func main() {
	log := logging.New("commerce-core")
	defer log.Sync()

	cfg := config.Load()

	db, err := repository.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := repository.RunMigrations(db, "migrations"); err != nil {
		log.Warn("migration run failed, falling back to auto-migrate for local/dev", zap.Error(err))
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("auto-migrate failed", zap.Error(err))
		}
	}

	redisClient, err := cache.New(cfg.Redis.URL)
	if err != nil {
		log.Fatal("failed to build redis client", zap.Error(err))
	}
	if err := redisClient.Ping(context.Background()); err != nil {
		log.Warn("redis ping failed at boot, continuing in degraded mode", zap.Error(err))
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, log)
	defer publisher.Close()

	businessRules := businessrules.Default()
	rulesRepo := repository.NewRulesRepository(db)
	overrides, err := rulesRepo.LoadAll(context.Background())
	if err != nil {
		log.Warn("failed to load business rule overrides, using defaults", zap.Error(err))
	} else {
		businessRules.ApplyOverrides(overrides)
	}

	seedRules, err := rules.LoadSeed("configs/rules.yaml")
	if err != nil {
		log.Fatal("failed to load rule seed", zap.Error(err))
	}
	ruleEngine := rules.NewEngine(seedRules)

	avail := availability.New(redisClient, log)
	inv := inventory.New(avail, businessRules, publisher, log)
	ranker := ranking.New(cfg.Ranking, nil, rand.New(rand.NewSource(time.Now().UnixNano())))

	productRepo := repository.NewProductRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	orderSvc := order.NewService(orderRepo, offerRepo, ledgerRepo, inv, publisher, businessRules, log)
	paymentOrch := payment.New(
		map[string]payment.Adapter{"default": &payment.MockAdapter{}},
		"default",
		orderSvc,
		businessRules,
		log,
	)
	fulfillmentSvc := fulfillment.NewService(fulfillmentRepo, ledgerRepo, orderRepo, orderSvc, log)
	orderSvc.SetFulfillmentIssuer(fulfillmentSvc)
	offerSvc := offer.NewService(productRepo, offerRepo, redisClient, ruleEngine, ranker, businessRules, publisher, log)
	disruptionMgr := disruption.NewManager(orderRepo, nil, log)

	metrics := httpapi.NewMetrics()
	handlers := httpapi.Handlers{
		Offers:      httpapi.NewOfferHandler(offerSvc, orderSvc),
		Orders:      httpapi.NewOrderHandler(orderSvc, paymentOrch, inv),
		Fulfillment: httpapi.NewFulfillmentHandler(fulfillmentSvc),
		Admin:       httpapi.NewAdminHandler(disruptionMgr, productRepo, businessRules, rulesRepo),
		Webhooks:    httpapi.NewWebhookHandler(orderSvc, paymentOrch),
		Seatmap:     httpapi.NewSeatmapHandler(inv),
	}
	router := httpapi.NewRouter(handlers, avail, metrics, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	stopSweeps := startBackgroundSweeps(offerSvc, orderSvc, log)
	defer close(stopSweeps)

	go func() {
		log.Info("starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// startBackgroundSweeps runs the offer and order expiry sweeps on their own
// tickers. Orders carry no independently-tracked release bookkeeping beyond
// what ExpireOldOrders' caller-supplied map offers, so the sweep here passes
// nil: an order past its PROPOSED hold is marked EXPIRED and the seats and
// flight counts held for it are not returned to inventory.
func startBackgroundSweeps(offerSvc *offer.Service, orderSvc *order.Service, log *logging.Logger) chan struct{} {
	stop := make(chan struct{})

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				n, err := offerSvc.ExpireStaleOffers(ctx)
				cancel()
				if err != nil {
					log.Error("offer expiry sweep failed", zap.Error(err))
				} else if n > 0 {
					log.Info("expired stale offers", zap.Int64("count", n))
				}
			case <-stop:
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				n, err := orderSvc.ExpireOldOrders(ctx, nil)
				cancel()
				if err != nil {
					log.Error("order expiry sweep failed", zap.Error(err))
				} else if n > 0 {
					log.Info("expired proposed orders", zap.Int("count", n))
				}
			case <-stop:
				return
			}
		}
	}()

	return stop
}

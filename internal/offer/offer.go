// Package offer implements the Offer Pipeline: search, bundle/discount via
// the Rule Engine, price, rank and persist offers; plus the expiry sweep.
package offer

import (
	"context"
	"time"

	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/cache"
	"github.com/ThinkGrid-Labs/altis-engine/internal/events"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
	"github.com/ThinkGrid-Labs/altis-engine/internal/pricing"
	"github.com/ThinkGrid-Labs/altis-engine/internal/ranking"
	"github.com/ThinkGrid-Labs/altis-engine/internal/repository"
	"github.com/ThinkGrid-Labs/altis-engine/internal/rules"
)

// Strategy names the offer variant a search produces candidates under.
type Strategy string

const (
	StrategyBaseline     Strategy = "baseline"
	StrategyDynamic      Strategy = "dynamic"
	StrategyPersonalised Strategy = "personalised"
)

// SearchRequest carries a search call's inputs.
type SearchRequest struct {
	AirlineID      string
	CustomerID     string
	Context        models.SearchContext
	FlightBasePriceNUC int64
	FlightProductID    string
	FlightDisplayName  string
	SeatUtilisation    float64
	Strategies         []Strategy
}

const offerCacheTTL = 15 * time.Minute

// Service runs the offer pipeline end to end.
type Service struct {
	products *repository.ProductRepository
	offers   *repository.OfferRepository
	cache    *cache.Client
	engine   *rules.Engine
	ranker   *ranking.Ranker
	rules    *businessrules.Rules
	events   events.Publisher
	log      *logging.Logger
}

func NewService(
	products *repository.ProductRepository,
	offers *repository.OfferRepository,
	cacheClient *cache.Client,
	engine *rules.Engine,
	ranker *ranking.Ranker,
	br *businessrules.Rules,
	pub events.Publisher,
	log *logging.Logger,
) *Service {
	return &Service{products: products, offers: offers, cache: cacheClient, engine: engine, ranker: ranker, rules: br, events: pub, log: log}
}

// Search produces, ranks, and persists offers for one search request.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]*models.Offer, error) {
	strategies := req.Strategies
	if len(strategies) == 0 {
		strategies = []Strategy{StrategyBaseline}
	}

	var built []*models.Offer
	var candidates []ranking.Candidate
	for _, strat := range strategies {
		offer, candidate, err := s.buildOffer(ctx, req, strat)
		if err != nil {
			return nil, err
		}
		candidate.Ref = offer
		built = append(built, offer)
		candidates = append(candidates, candidate)
	}

	scored, err := s.rankOffers(ctx, candidates)
	if err != nil {
		return nil, err
	}

	for _, offer := range scored {
		if err := offer.SetSearchContext(req.Context); err != nil {
			return nil, err
		}
		if err := s.offers.Create(ctx, offer); err != nil {
			return nil, err
		}
		_ = s.cache.SetJSON(ctx, offerCacheKey(offer.ID), offer, offerCacheTTL)
		s.log.BusinessEvent("offer_generated", offer.ID, map[string]interface{}{
			"airline_id":  req.AirlineID,
			"strategy":    offer.ExperimentTag,
			"rank_score":  offer.RankScore,
		})
		_ = s.events.Publish(ctx, events.TopicOfferGenerated, offer.ID, map[string]interface{}{
			"offer_id": offer.ID,
		})
	}

	return scored, nil
}

func (s *Service) buildOffer(ctx context.Context, req SearchRequest, strat Strategy) (*models.Offer, ranking.Candidate, error) {
	ruleCtx := rules.Context{
		Segment:        req.Context.UserSegment,
		Origin:         req.Context.Origin,
		Destination:    req.Context.Destination,
		PassengerCount: req.Context.PassengerCount,
		BasePriceNUC:   req.FlightBasePriceNUC,
	}
	result := s.engine.Evaluate(ruleCtx)

	pricingCtx := pricing.Context{
		Timestamp:         time.Now(),
		UserSegment:       req.Context.UserSegment,
		TimeMultiplier:    s.rules.PricingMultiplier,
		SeatUtilisation:   req.SeatUtilisation,
		SegmentMultiplier: 1,
		RoundingIncrement: 100,
	}
	flightPrice := pricing.Calculate(req.FlightBasePriceNUC, pricingCtx, s.rules)

	offer := &models.Offer{
		CustomerID: req.CustomerID,
		AirlineID:  req.AirlineID,
		Currency:   "USD",
		Status:     models.OfferActive,
		ExperimentTag: string(strat),
	}
	offer.Items = append(offer.Items, models.OfferItem{
		ProductKind: models.ProductFlight,
		ProductID:   req.FlightProductID,
		DisplayName: req.FlightDisplayName,
		PriceNUC:    flightPrice,
		Quantity:    1,
	})

	var marginNUC int64
	for _, kind := range result.BundleKinds {
		products, err := s.products.ListActiveByKind(ctx, req.AirlineID, kind)
		if err != nil {
			return nil, ranking.Candidate{}, err
		}
		if len(products) == 0 {
			continue
		}
		p := products[0]
		price := p.BasePriceNUC
		if fraction, ok := result.Discounts[kind]; ok {
			price = pricing.ApplyDiscount(price, fraction)
		}
		offer.Items = append(offer.Items, models.OfferItem{
			ProductKind: kind,
			ProductID:   p.ID,
			DisplayName: p.DisplayName,
			PriceNUC:    price,
			Quantity:    1,
		})
		marginNUC += int64(float64(price) * p.MarginPercent)
	}

	offer.RecalculateTotal()

	candidate := ranking.Candidate{
		ItemCount:     len(offer.Items),
		TotalPriceNUC: offer.TotalNUC,
		MarginNUC:     marginNUC,
	}
	return offer, candidate, nil
}

func (s *Service) rankOffers(ctx context.Context, candidates []ranking.Candidate) ([]*models.Offer, error) {
	scored, err := s.ranker.RankAndSort(ctx, candidates)
	if err != nil {
		return nil, err
	}
	ordered := make([]*models.Offer, 0, len(scored))
	for _, sc := range scored {
		o := sc.Ref.(*models.Offer)
		o.RankScore = sc.Score
		o.ExperimentTag = o.ExperimentTag + ":" + sc.ExperimentID
		ordered = append(ordered, o)
	}
	return ordered, nil
}

// GetOffer fetches an offer by id, checking the cache before the durable
// store.
func (s *Service) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	var cached models.Offer
	if err := s.cache.GetJSON(ctx, offerCacheKey(id), &cached); err == nil {
		return &cached, nil
	}
	return s.offers.GetByID(ctx, id)
}

// CancelOffer withdraws an ACTIVE offer before it is accepted.
func (s *Service) CancelOffer(ctx context.Context, id string) error {
	if err := s.offers.Cancel(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Client.Del(ctx, offerCacheKey(id)).Err()
	return nil
}

// ExpireStaleOffers sweeps ACTIVE offers past expiry.
func (s *Service) ExpireStaleOffers(ctx context.Context) (int64, error) {
	return s.offers.ExpireStaleOffers(ctx)
}

func offerCacheKey(offerID string) string {
	return "offer:" + offerID
}

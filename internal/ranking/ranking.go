// Package ranking implements the Offer Pipeline's Ranker: a configurable
// fraction of calls route to an external ML scorer, the rest use a
// rule-based scorer combining an item-count-based conversion estimate with
// a margin-weighted price score.
package ranking

import (
	"context"
	"math/rand"

	"github.com/ThinkGrid-Labs/altis-engine/internal/config"
)

// Candidate is one offer variant awaiting a score. Ref is opaque to the
// ranker — callers stash whatever they need to recover the original offer
// after sorting (e.g. its id or a pointer) and it is passed through
// unchanged.
type Candidate struct {
	ItemCount     int
	TotalPriceNUC int64
	MarginNUC     int64 // sum of item margin contributions
	Ref           interface{}
}

// Scored attaches ranking metadata to a Candidate, mirroring the offer's
// persisted rank_score/experiment_id metadata fields.
type Scored struct {
	Candidate
	Score        float64
	ExperimentID string
}

// MLRanker is the external ML scoring collaborator's interface; this core
// depends only on the interface, never on a concrete implementation.
type MLRanker interface {
	Score(ctx context.Context, c Candidate) (float64, error)
}

// Ranker scores and sorts offer candidates.
type Ranker struct {
	cfg config.RankingConfig
	ml  MLRanker
	rng *rand.Rand
}

func New(cfg config.RankingConfig, ml MLRanker, rng *rand.Rand) *Ranker {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Ranker{cfg: cfg, ml: ml, rng: rng}
}

// RankAndSort scores every candidate and returns them sorted descending by
// score. A configured fraction of calls route to the ML path; the rest use
// the rule-based scorer.
func (r *Ranker) RankAndSort(ctx context.Context, candidates []Candidate) ([]Scored, error) {
	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		useML := r.ml != nil && r.cfg.MLExperimentPercent > 0 && r.rng.Float64() < r.cfg.MLExperimentPercent
		experimentID := "rule_based"
		var score float64
		var err error
		if useML {
			score, err = r.ml.Score(ctx, c)
			if err != nil {
				// ML path failure falls back to the rule-based scorer —
				// the ranker must never fail an offer generation because
				// its optional ML collaborator is unavailable.
				score = r.ruleBasedScore(c)
				experimentID = "rule_based_fallback"
			} else {
				experimentID = "ml"
			}
		} else {
			score = r.ruleBasedScore(c)
		}
		out = append(out, Scored{Candidate: c, Score: score, ExperimentID: experimentID})
	}

	sortDescending(out)
	return out, nil
}

// ruleBasedScore combines a conversion estimate (more bundled items tends
// to convert better, with diminishing returns) and a margin-weighted price
// score, using the configured weights.
func (r *Ranker) ruleBasedScore(c Candidate) float64 {
	conversionEstimate := 1 - 1/float64(1+c.ItemCount)
	marginScore := 0.0
	if c.TotalPriceNUC > 0 {
		marginScore = float64(c.MarginNUC) / float64(c.TotalPriceNUC)
	}
	return conversionEstimate*r.cfg.ConversionWeight + marginScore*r.cfg.MarginWeight
}

func sortDescending(scored []Scored) {
	for i := 1; i < len(scored); i++ {
		j := i
		for j > 0 && scored[j-1].Score < scored[j].Score {
			scored[j-1], scored[j] = scored[j], scored[j-1]
			j--
		}
	}
}

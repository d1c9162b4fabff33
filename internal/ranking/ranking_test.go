package ranking

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThinkGrid-Labs/altis-engine/internal/config"
)

type stubML struct {
	score float64
	err   error
}

func (s *stubML) Score(ctx context.Context, c Candidate) (float64, error) {
	return s.score, s.err
}

func testConfig() config.RankingConfig {
	return config.RankingConfig{ConversionWeight: 0.6, MarginWeight: 0.4}
}

func TestRankAndSort_RuleBasedWhenNoMLConfigured(t *testing.T) {
	r := New(testConfig(), nil, rand.New(rand.NewSource(1)))

	scored, err := r.RankAndSort(context.Background(), []Candidate{
		{ItemCount: 1, TotalPriceNUC: 10000, MarginNUC: 1000},
		{ItemCount: 3, TotalPriceNUC: 10000, MarginNUC: 3000},
	})

	require.NoError(t, err)
	require.Len(t, scored, 2)
	for _, s := range scored {
		assert.Equal(t, "rule_based", s.ExperimentID)
	}
	assert.GreaterOrEqual(t, scored[0].Score, scored[1].Score)
}

func TestRankAndSort_SortsDescending(t *testing.T) {
	r := New(testConfig(), nil, rand.New(rand.NewSource(1)))

	scored, err := r.RankAndSort(context.Background(), []Candidate{
		{ItemCount: 0, TotalPriceNUC: 10000, MarginNUC: 0},
		{ItemCount: 5, TotalPriceNUC: 10000, MarginNUC: 5000},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, scored[0].ItemCount)
}

func TestRankAndSort_MLFailureFallsBackToRuleBased(t *testing.T) {
	cfg := testConfig()
	cfg.MLExperimentPercent = 1.0
	r := New(cfg, &stubML{err: errors.New("ml unavailable")}, rand.New(rand.NewSource(1)))

	scored, err := r.RankAndSort(context.Background(), []Candidate{
		{ItemCount: 1, TotalPriceNUC: 10000, MarginNUC: 1000},
	})

	require.NoError(t, err)
	assert.Equal(t, "rule_based_fallback", scored[0].ExperimentID)
}

func TestRankAndSort_MLPathUsedWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.MLExperimentPercent = 1.0
	r := New(cfg, &stubML{score: 0.99}, rand.New(rand.NewSource(1)))

	scored, err := r.RankAndSort(context.Background(), []Candidate{
		{ItemCount: 1, TotalPriceNUC: 10000, MarginNUC: 1000},
	})

	require.NoError(t, err)
	assert.Equal(t, "ml", scored[0].ExperimentID)
	assert.Equal(t, 0.99, scored[0].Score)
}

func TestRankAndSort_PreservesRef(t *testing.T) {
	r := New(testConfig(), nil, rand.New(rand.NewSource(1)))

	scored, err := r.RankAndSort(context.Background(), []Candidate{
		{ItemCount: 1, TotalPriceNUC: 100, Ref: "first"},
		{ItemCount: 2, TotalPriceNUC: 100, Ref: "second"},
	})

	require.NoError(t, err)
	refs := []interface{}{scored[0].Ref, scored[1].Ref}
	assert.ElementsMatch(t, []interface{}{"first", "second"}, refs)
}

package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

type fakeOrders struct {
	applyFunc func(ctx context.Context, orderID string, succeeded bool, flightSeats map[string]int64, tripID string, seats map[string]string) (*models.Order, error)
	calls     []bool
}

func (f *fakeOrders) ApplyPaymentOutcome(ctx context.Context, orderID string, succeeded bool, flightSeats map[string]int64, tripID string, seats map[string]string) (*models.Order, error) {
	f.calls = append(f.calls, succeeded)
	if f.applyFunc != nil {
		return f.applyFunc(ctx, orderID, succeeded, flightSeats, tripID, seats)
	}
	status := models.OrderCancelled
	if succeeded {
		status = models.OrderPaid
	}
	return &models.Order{ID: orderID, Status: status}, nil
}

func testRules() *businessrules.Rules {
	r := businessrules.Default()
	r.PaymentBreakerFailureThreshold = 2
	return r
}

func TestOrchestrator_Pay_Succeeded(t *testing.T) {
	fo := &fakeOrders{}
	adapter := &MockAdapter{
		ProcessPaymentFunc: func(ctx context.Context, intent *models.PaymentIntent) (models.PaymentStatus, error) {
			return models.PaymentSucceeded, nil
		},
	}
	orch := New(map[string]Adapter{"USD": adapter}, "USD", fo, testRules(), logging.New("test"))

	ord := &models.Order{ID: "o1", Currency: "USD", TotalNUC: 10000}
	out, err := orch.Pay(context.Background(), ord, InventoryRelease{})

	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, out.Status)
	assert.Equal(t, []bool{true}, fo.calls)
}

func TestOrchestrator_Pay_Failed_ReleasesInventory(t *testing.T) {
	fo := &fakeOrders{}
	adapter := &MockAdapter{
		ProcessPaymentFunc: func(ctx context.Context, intent *models.PaymentIntent) (models.PaymentStatus, error) {
			return models.PaymentFailed, nil
		},
	}
	orch := New(map[string]Adapter{"USD": adapter}, "USD", fo, testRules(), logging.New("test"))

	ord := &models.Order{ID: "o2", Currency: "USD", TotalNUC: 10000}
	out, err := orch.Pay(context.Background(), ord, InventoryRelease{FlightSeats: map[string]int64{"F1": 1}})

	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, out.Status)
	assert.Equal(t, []bool{false}, fo.calls)
}

func TestOrchestrator_Pay_Processing_StaysPending(t *testing.T) {
	fo := &fakeOrders{}
	adapter := &MockAdapter{
		ProcessPaymentFunc: func(ctx context.Context, intent *models.PaymentIntent) (models.PaymentStatus, error) {
			return models.PaymentProcessing, nil
		},
	}
	orch := New(map[string]Adapter{"USD": adapter}, "USD", fo, testRules(), logging.New("test"))

	ord := &models.Order{ID: "o3", Currency: "USD", Status: models.OrderPaymentPending}
	out, err := orch.Pay(context.Background(), ord, InventoryRelease{})

	require.NoError(t, err)
	assert.Equal(t, models.OrderPaymentPending, out.Status)
	assert.Empty(t, fo.calls)
}

func TestOrchestrator_Pay_BreakerTripsAfterConsecutiveFailures(t *testing.T) {
	fo := &fakeOrders{}
	callErr := errors.New("provider timeout")
	adapter := &MockAdapter{
		ProcessPaymentFunc: func(ctx context.Context, intent *models.PaymentIntent) (models.PaymentStatus, error) {
			return "", callErr
		},
	}
	rules := testRules()
	orch := New(map[string]Adapter{"USD": adapter}, "USD", fo, rules, logging.New("test"))
	ord := &models.Order{ID: "o4", Currency: "USD"}

	for i := 0; i < int(rules.PaymentBreakerFailureThreshold); i++ {
		_, err := orch.Pay(context.Background(), ord, InventoryRelease{})
		require.Error(t, err)
	}

	_, err := orch.Pay(context.Background(), ord, InventoryRelease{})
	require.Error(t, err)
	assert.True(t, isDependencyUnavailable(err))
}

func isDependencyUnavailable(err error) bool {
	e, ok := altiserr.As(err)
	return ok && e.Kind == altiserr.DependencyUnavailable
}

package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// MockAdapter is the default test/dev adapter: every method is a function
// field, nil-safe with a sensible default, so callers override only what a
// given test cares about.
type MockAdapter struct {
	CreateIntentFunc   func(ctx context.Context, orderID string, amountNUC int64, currency string) (*models.PaymentIntent, error)
	GetIntentFunc      func(ctx context.Context, intentID string) (*models.PaymentIntent, error)
	ProcessPaymentFunc func(ctx context.Context, intent *models.PaymentIntent) (models.PaymentStatus, error)
	CaptureFunc        func(ctx context.Context, intentID string) error
}

func (m *MockAdapter) CreateIntent(ctx context.Context, orderID string, amountNUC int64, currency string) (*models.PaymentIntent, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, orderID, amountNUC, currency)
	}
	return &models.PaymentIntent{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		AmountNUC: amountNUC,
		Currency:  currency,
		Status:    models.PaymentRequiresMethod,
	}, nil
}

func (m *MockAdapter) GetIntent(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	if m.GetIntentFunc != nil {
		return m.GetIntentFunc(ctx, intentID)
	}
	return &models.PaymentIntent{ID: intentID, Status: models.PaymentSucceeded}, nil
}

func (m *MockAdapter) ProcessPayment(ctx context.Context, intent *models.PaymentIntent) (models.PaymentStatus, error) {
	if m.ProcessPaymentFunc != nil {
		return m.ProcessPaymentFunc(ctx, intent)
	}
	return models.PaymentSucceeded, nil
}

func (m *MockAdapter) Capture(ctx context.Context, intentID string) error {
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, intentID)
	}
	return nil
}

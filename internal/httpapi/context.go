package httpapi

import (
	"context"

	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
)

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, logging.RequestIDKey, id)
}

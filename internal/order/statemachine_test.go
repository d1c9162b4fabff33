package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

func TestTransition_LegalPaths(t *testing.T) {
	cases := []struct {
		from models.OrderStatus
		evt  event
		want models.OrderStatus
	}{
		{"", eventAcceptOffer, models.OrderProposed},
		{models.OrderProposed, eventBeginPayment, models.OrderPaymentPending},
		{models.OrderPaymentPending, eventPaymentSuccess, models.OrderPaid},
		{models.OrderPaid, eventConsumeAll, models.OrderFulfilled},
		{models.OrderFulfilled, eventArchive, models.OrderArchived},
		{models.OrderProposed, eventExpire, models.OrderExpired},
		{models.OrderProposed, eventCancel, models.OrderCancelled},
		{models.OrderPaymentPending, eventPaymentFailed, models.OrderCancelled},
		{models.OrderPaid, eventInvoluntaryRefund, models.OrderCancelled},
		{models.OrderFulfilled, eventInvoluntaryRefund, models.OrderCancelled},
	}
	for _, c := range cases {
		got, err := transition(c.from, c.evt)
		assert.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestTransition_IllegalPathsRejected(t *testing.T) {
	illegal := []struct {
		from models.OrderStatus
		evt  event
	}{
		{models.OrderArchived, eventCancel},
		{models.OrderCancelled, eventBeginPayment},
		{models.OrderExpired, eventConsumeAll},
		{models.OrderProposed, eventConsumeAll},
		{models.OrderPaid, eventBeginPayment},
	}
	for _, c := range illegal {
		_, err := transition(c.from, c.evt)
		assert.Error(t, err)
	}
}

// Package order implements the order state machine: legal-transition
// enforcement via an explicit table, acceptance, reshop/change-flight, and
// the expiry sweep and involuntary refund that drive involuntary transitions.
package order

import (
	"fmt"

	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// event names the triggers that drive order transitions.
type event string

const (
	eventAcceptOffer     event = "accept_offer"
	eventExpire          event = "expire"
	eventCancel          event = "cancel"
	eventBeginPayment    event = "begin_payment"
	eventPaymentSuccess  event = "payment_succeeded"
	eventPaymentFailed   event = "payment_failed"
	eventConsumeAll      event = "consume_all"
	eventInvoluntaryRefund event = "involuntary_refund"
	eventArchive         event = "archive"
)

type stateEventKey struct {
	from  models.OrderStatus
	event event
}

// transitionTable is the total legal-transition map. Any (state, event)
// pair absent from it is an illegal transition.
var transitionTable = map[stateEventKey]models.OrderStatus{
	{"", eventAcceptOffer}:                                                      models.OrderProposed,
	{models.OrderProposed, eventExpire}:                                         models.OrderExpired,
	{models.OrderProposed, eventCancel}:                                         models.OrderCancelled,
	{models.OrderProposed, eventBeginPayment}:                                   models.OrderPaymentPending,
	{models.OrderPaymentPending, eventPaymentSuccess}:                           models.OrderPaid,
	{models.OrderPaymentPending, eventPaymentFailed}:                            models.OrderCancelled,
	{models.OrderPaid, eventConsumeAll}:                                         models.OrderFulfilled,
	{models.OrderPaid, eventInvoluntaryRefund}:                                  models.OrderCancelled,
	{models.OrderFulfilled, eventInvoluntaryRefund}:                             models.OrderCancelled,
	{models.OrderFulfilled, eventArchive}:                                       models.OrderArchived,
}

// transition validates and returns the destination state for (from, evt),
// or an error naming both ends if the pair is illegal.
func transition(from models.OrderStatus, evt event) (models.OrderStatus, error) {
	to, ok := transitionTable[stateEventKey{from, evt}]
	if !ok {
		return "", fmt.Errorf("invalid transition: %s -> (%s)", from, evt)
	}
	return to, nil
}

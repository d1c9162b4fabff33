// Package inventory implements the Inventory Reservation Manager: at-most-
// one-winner seat assignment and flight-oversell prevention under
// contention, composed of trip holds, seat holds and hard-hold decrements.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/availability"
	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/events"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// Manager is the Inventory Reservation Manager.
type Manager struct {
	avail  *availability.Cache
	rules  *businessrules.Rules
	events events.Publisher
	log    *logging.Logger
	bus    *Bus
}

func New(avail *availability.Cache, rules *businessrules.Rules, pub events.Publisher, log *logging.Logger) *Manager {
	return &Manager{avail: avail, rules: rules, events: pub, log: log, bus: newBus()}
}

// Subscribe registers a live listener for flightID's seat_held events, for
// an SSE handler to stream to a seat-map client. The returned cancel func
// must be called when the caller disconnects.
func (m *Manager) Subscribe(flightID string) (<-chan SeatEvent, func()) {
	return m.bus.subscribe(flightID)
}

// CreateTripHold allocates a new trip identifier in DRAFT status, recording
// owner and flight list with a business-rule-sourced TTL. Fails if no
// flights are supplied.
func (m *Manager) CreateTripHold(ctx context.Context, owner string, flights []string) (*models.Hold, error) {
	if len(flights) == 0 {
		return nil, altiserr.NewValidation("create_trip_hold", "at least one flight is required")
	}
	tripID := uuid.New().String()
	hold := &models.Hold{
		TripID:  tripID,
		Flights: flights,
		Owner:   owner,
		Status:  models.HoldDraft,
		Seats:   map[string]string{},
	}
	ttl := time.Duration(m.rules.TripHoldSeconds) * time.Second
	fields := map[string]string{
		"flights": joinFlights(flights),
		"owner":   owner,
		"status":  string(models.HoldDraft),
	}
	if err := m.avail.SetTripHash(ctx, tripID, fields, ttl); err != nil {
		return nil, altiserr.NewInternal("create_trip_hold", "failed to persist trip hold", err)
	}
	return hold, nil
}

// HoldSeat attempts to acquire a seat lock for tripID. On success it
// publishes seat_held to the broadcast bus and the durable event log; on
// loss it returns a Conflict error.
func (m *Manager) HoldSeat(ctx context.Context, tripID, flightID, seatNumber string) error {
	ttl := time.Duration(m.rules.SeatHoldSeconds) * time.Second
	won, err := m.avail.AcquireSeatLock(ctx, flightID, seatNumber, tripID, ttl)
	if err != nil {
		return altiserr.NewInternal("hold_seat", "seat lock acquisition failed", err)
	}
	if !won {
		return altiserr.NewConflict("hold_seat", fmt.Sprintf("seat %s on flight %s already held", seatNumber, flightID))
	}
	m.log.BusinessEvent("seat_held", tripID, map[string]interface{}{
		"flight_id":   flightID,
		"seat_number": seatNumber,
	})
	_ = m.events.Publish(ctx, "holds.created", tripID, map[string]interface{}{
		"trip_id":     tripID,
		"flight_id":   flightID,
		"seat_number": seatNumber,
	})
	m.bus.publish(SeatEvent{
		TripID:     tripID,
		FlightID:   flightID,
		SeatNumber: seatNumber,
		Status:     "HELD",
	})
	return nil
}

// HardHoldFlight atomically decrements flight availability for each flight
// item on offer acceptance. If any decrement underflows, all prior
// decrements in this call are rolled back by incrementing exactly the
// amount previously decremented for that flight — never a blind set(0),
// so a failed multi-flight hard hold never leaves a flight over-decremented.
func (m *Manager) HardHoldFlight(ctx context.Context, flightSeats map[string]int64) error {
	decremented := make(map[string]int64, len(flightSeats))
	for flightID, seats := range flightSeats {
		result, err := m.avail.DecrementFlightAvailability(ctx, flightID, seats)
		if err != nil {
			m.rollback(ctx, decremented)
			return altiserr.NewInternal("hard_hold_flight", "availability decrement failed", err)
		}
		switch result {
		case availability.DecrementOK:
			decremented[flightID] = seats
		case availability.DecrementMiss:
			// Read failure policy: cache miss fails open for reads — the
			// caller is expected to have warm-filled before acceptance;
			// treat a miss here as "no availability known" and conflict
			// rather than silently allowing an oversell.
			m.rollback(ctx, decremented)
			return altiserr.NewConflict("hard_hold_flight", fmt.Sprintf("no cached availability for flight %s", flightID))
		case availability.DecrementUnderflow:
			m.rollback(ctx, decremented)
			return altiserr.NewConflict("hard_hold_flight", fmt.Sprintf("insufficient availability for flight %s", flightID))
		}
	}
	return nil
}

func (m *Manager) rollback(ctx context.Context, decremented map[string]int64) {
	for flightID, seats := range decremented {
		if err := m.avail.IncrementFlightAvailability(ctx, flightID, seats); err != nil {
			m.log.Error("failed to roll back flight availability decrement",
				zap.String("flight_id", flightID), zap.Int64("seats", seats), zap.Error(err))
		}
	}
}

// Release returns held inventory to the pool on cancel/expire: increments
// flight availability and deletes seat locks belonging to the trip.
func (m *Manager) Release(ctx context.Context, tripID string, flightSeats map[string]int64, seats map[string]string) error {
	for flightID, amount := range flightSeats {
		if err := m.avail.IncrementFlightAvailability(ctx, flightID, amount); err != nil {
			return altiserr.NewInternal("release", "failed to release flight availability", err)
		}
	}
	for seatKey, flightID := range seats {
		if err := m.avail.ReleaseSeatLock(ctx, flightID, seatKey); err != nil {
			m.log.Error("failed to release seat lock", zap.String("seat", seatKey), zap.Error(err))
		}
	}
	_ = m.avail.DeleteTripHash(ctx, tripID)
	return nil
}

func joinFlights(flights []string) string {
	out := ""
	for i, f := range flights {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}

// Package disruption implements involuntary re-accommodation: given a
// disrupted flight, find affected orders, protect their items, and attach
// a zero-priced alternative when one exists.
package disruption

import (
	"context"

	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
	"github.com/ThinkGrid-Labs/altis-engine/internal/repository"
)

// AlternativeFlight is one candidate replacement for a disrupted segment.
type AlternativeFlight struct {
	FlightID    string
	Origin      string
	Destination string
	DepartureAt string
}

// RouteFinder looks up a same-origin/destination alternative for a
// disrupted flight. Out of scope for this core: the concrete
// schedule/availability search behind it (flight_id -> candidate flights)
// is an external collaborator.
type RouteFinder interface {
	FindAlternative(ctx context.Context, disruptedFlightID, origin, destination string) (*AlternativeFlight, error)
}

// Manager drives the disruption flow over affected orders.
type Manager struct {
	orders *repository.OrderRepository
	routes RouteFinder
	log    *logging.Logger
}

func NewManager(orders *repository.OrderRepository, routes RouteFinder, log *logging.Logger) *Manager {
	return &Manager{orders: orders, routes: routes, log: log}
}

// AffectedOrder is one order this disruption touched, along with the
// items that were protected and (if found) reaccommodated.
type AffectedOrder struct {
	OrderID           string
	ProtectedItemIDs  []string
	ReaccommodatedItem *models.OrderItem
}

// ProcessDisruption finds PAID/FULFILLED orders with ACTIVE items
// referencing flightID, flips those items to PROTECTED, and — if
// RouteFinder locates an alternative on the same origin/destination —
// adds a zero-priced REACCOMMODATED item referencing it.
func (m *Manager) ProcessDisruption(ctx context.Context, flightID, origin, destination string) ([]AffectedOrder, error) {
	orders, err := m.orders.GetOrdersReferencingFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	var alt *AlternativeFlight
	if m.routes != nil {
		alt, _ = m.routes.FindAlternative(ctx, flightID, origin, destination)
	}

	var affected []AffectedOrder
	for i := range orders {
		ord := &orders[i]
		items := ord.ItemsReferencingFlight(flightID)
		if len(items) == 0 {
			continue
		}

		result := AffectedOrder{OrderID: ord.ID}
		for _, item := range items {
			item.Status = models.ItemProtected
			result.ProtectedItemIDs = append(result.ProtectedItemIDs, item.ID)
		}

		if alt != nil {
			newItem := models.OrderItem{
				OrderID:     ord.ID,
				Kind:        models.ProductFlight,
				DisplayName: "reaccommodation: " + alt.FlightID,
				PriceNUC:    0,
				Quantity:    1,
				Status:      models.ItemReaccommodated,
				RevenueStatus: models.RevenueUnearned,
			}
			_ = newItem.SetMetadata(map[string]interface{}{"flight_id": alt.FlightID})
			ord.Items = append(ord.Items, newItem)
			result.ReaccommodatedItem = &newItem
		}

		ord.RecalculateTotal()
		ord.AddAuditEntry("flight_disruption", "", "", flightID)
		if err := m.orders.Update(ctx, ord); err != nil {
			return affected, err
		}
		m.log.BusinessEvent("disruption_processed", ord.ID, map[string]interface{}{
			"flight_id":    flightID,
			"reaccommodated": alt != nil,
		})
		affected = append(affected, result)
	}
	return affected, nil
}

package disruption

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

func TestAffectedOrder_FindsItemsReferencingFlight(t *testing.T) {
	ord := &models.Order{
		ID: "ord-1",
		Items: []models.OrderItem{
			{ID: "item-1", Status: models.ItemActive},
		},
	}
	_ = ord.Items[0].SetMetadata(map[string]interface{}{"flight_id": "FL100"})

	refs := ord.ItemsReferencingFlight("FL100")
	assert.Len(t, refs, 1)
	assert.Equal(t, "item-1", refs[0].ID)
}

func TestAffectedOrder_NoMatchingFlight(t *testing.T) {
	ord := &models.Order{
		ID: "ord-2",
		Items: []models.OrderItem{
			{ID: "item-1", Status: models.ItemActive},
		},
	}
	_ = ord.Items[0].SetMetadata(map[string]interface{}{"flight_id": "FL200"})

	refs := ord.ItemsReferencingFlight("FL100")
	assert.Empty(t, refs)
}

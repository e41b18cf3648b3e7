package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochi-dev/medisync/internal/core/stock"
	"github.com/tochi-dev/medisync/internal/models"
)

func healthyInventory() models.Inventory {
	return models.Inventory{
		Saline: 20, Injections: 20, Antibodies: 20, OTRooms: 20, GeneralBeds: 20,
		AvailableNursesCount: 20, ECGMachines: 20, CTScan: 20, Endoscopy: 20,
		BPMachines: 20, Ultrasonography: 20, XrayMachines: 20,
		Medicines:      []models.CountedItem{},
		Instruments:    []models.CountedItem{},
		OtherEquipment: []models.CountedItem{},
	}
}

func TestCheckStrictLessThan(t *testing.T) {
	inv := healthyInventory()
	inv.Saline = 3

	alerts := stock.Check(inv, 5)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.StockAlert{Item: "saline", Count: 3, Threshold: 5}, alerts[0])

	inv.Saline = 5
	assert.Empty(t, stock.Check(inv, 5), "at-threshold item does not alert")
}

func TestCheckCoversListEntries(t *testing.T) {
	inv := healthyInventory()
	inv.Medicines = []models.CountedItem{{Name: "Paracetamol", Count: 2}, {Name: "Ibuprofen", Count: 50}}
	inv.Instruments = []models.CountedItem{{Name: "Forceps", Count: 0}}
	inv.OtherEquipment = []models.CountedItem{{Name: "Wheelchair", Count: 4}}

	alerts := stock.Check(inv, stock.DefaultThreshold)

	items := []string{}
	for _, a := range alerts {
		items = append(items, a.Item)
	}
	assert.ElementsMatch(t, []string{"Paracetamol", "Forceps", "Wheelchair"}, items)
}

func TestCheckEmptyInventoryAlertsEveryScalar(t *testing.T) {
	alerts := stock.Check(models.Inventory{}, 5)
	assert.Len(t, alerts, 12, "all twelve scalar fields are below threshold at zero")
}

func TestHoldBedsClampsAtZero(t *testing.T) {
	inv := healthyInventory()

	held := stock.HoldBeds(inv, 6)
	assert.Equal(t, 14, held.GeneralBeds)
	assert.Equal(t, 20, inv.GeneralBeds, "input not mutated")

	held = stock.HoldBeds(inv, 100)
	assert.Zero(t, held.GeneralBeds)

	held = stock.HoldBeds(inv, 0)
	assert.Equal(t, 20, held.GeneralBeds)
}

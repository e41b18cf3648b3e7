// Package stock scans an inventory view for items below the low-stock
// threshold. Alerts are informational and recomputed per check.
package stock

import (
	"github.com/tochi-dev/medisync/internal/models"
)

// DefaultThreshold is the fixed low-stock threshold used by the product.
// The check itself takes the threshold as a parameter for testability.
const DefaultThreshold = 5

// Check returns one alert per inventory item whose count is strictly
// below threshold. Every scalar field and every counted-list entry is a
// checked item.
func Check(inv models.Inventory, threshold int) []models.StockAlert {
	alerts := []models.StockAlert{}

	scalar := func(name string, count int) {
		if count < threshold {
			alerts = append(alerts, models.StockAlert{Item: name, Count: count, Threshold: threshold})
		}
	}

	scalar("saline", inv.Saline)
	scalar("injections", inv.Injections)
	scalar("antibodies", inv.Antibodies)
	scalar("ot_rooms", inv.OTRooms)
	scalar("general_beds", inv.GeneralBeds)
	scalar("available_nurses_count", inv.AvailableNursesCount)
	scalar("ecg_machines", inv.ECGMachines)
	scalar("ct_scan", inv.CTScan)
	scalar("endoscopy", inv.Endoscopy)
	scalar("bp_machines", inv.BPMachines)
	scalar("ultrasonography", inv.Ultrasonography)
	scalar("xray_machines", inv.XrayMachines)

	for _, list := range [][]models.CountedItem{inv.Medicines, inv.Instruments, inv.OtherEquipment} {
		for _, it := range list {
			scalar(it.Name, it.Count)
		}
	}

	return alerts
}

// HoldBeds returns a copy of inv with n beds held back, clamped at zero.
// Used for the post-allocation stock check; oxygen and dialysis holds have
// no inventory counterpart and adjust nothing.
func HoldBeds(inv models.Inventory, n int) models.Inventory {
	if n <= 0 {
		return inv
	}
	out := inv
	out.GeneralBeds -= n
	if out.GeneralBeds < 0 {
		out.GeneralBeds = 0
	}
	return out
}

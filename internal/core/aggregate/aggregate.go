// Package aggregate folds all completed resource records of one owner
// into a single consolidated snapshot. The fold is pure and recomputed
// from scratch on every read, which is what makes repeated aggregation
// idempotent and the numeric results order-independent.
package aggregate

import (
	"github.com/tochi-dev/medisync/internal/core/normalize"
	"github.com/tochi-dev/medisync/internal/models"
)

// Build merges the given records into one snapshot. Records that are not
// completed, or completed without a payload, contribute nothing. Zero
// usable records yield an all-zero/empty snapshot, not an error.
//
// Staff rosters are de-duplicated by normalized name; the first entry seen
// for a key is kept verbatim and later duplicates are ignored. Counted
// lists are merged by normalized name with counts summed. Scalar counts
// accumulate in int64 and are never truncated silently.
func Build(records []models.ResourceRecord) *models.AggregatedSnapshot {
	snap := &models.AggregatedSnapshot{
		Doctors: []models.StaffMember{},
		Nurses:  []models.StaffMember{},
		Inventory: models.Inventory{
			Medicines:      []models.CountedItem{},
			Instruments:    []models.CountedItem{},
			OtherEquipment: []models.CountedItem{},
		},
		Sources: []models.SourceSummary{},
	}

	doctorSeen := map[string]bool{}
	nurseSeen := map[string]bool{}
	medicines := newItemMerge()
	instruments := newItemMerge()
	equipment := newItemMerge()
	var totals scalarTotals

	for i := range records {
		rec := &records[i]
		if rec.Status != models.StatusCompleted || rec.Data == nil {
			continue
		}

		snap.Sources = append(snap.Sources, models.SourceSummary{
			ID:        rec.ID,
			FileName:  rec.FileName,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})

		snap.Doctors = mergeStaff(snap.Doctors, rec.Data.Doctors, doctorSeen)
		snap.Nurses = mergeStaff(snap.Nurses, rec.Data.Nurses, nurseSeen)

		inv := &rec.Data.Inventory
		totals.add(inv)
		medicines.addAll(inv.Medicines)
		instruments.addAll(inv.Instruments)
		equipment.addAll(inv.OtherEquipment)
	}

	totals.apply(&snap.Inventory)
	snap.Inventory.Medicines = medicines.items
	snap.Inventory.Instruments = instruments.items
	snap.Inventory.OtherEquipment = equipment.items

	return snap
}

func mergeStaff(dst, src []models.StaffMember, seen map[string]bool) []models.StaffMember {
	for _, s := range src {
		key := normalize.Key(s.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, s)
	}
	return dst
}

// itemMerge accumulates counted items keyed by normalized name while
// preserving first-seen order and display casing.
type itemMerge struct {
	items []models.CountedItem
	index map[string]int
}

func newItemMerge() *itemMerge {
	return &itemMerge{items: []models.CountedItem{}, index: map[string]int{}}
}

func (m *itemMerge) addAll(src []models.CountedItem) {
	for _, it := range src {
		key := normalize.Key(it.Name)
		if key == "" {
			continue
		}
		if pos, ok := m.index[key]; ok {
			m.items[pos].Count += it.Count
			continue
		}
		m.index[key] = len(m.items)
		m.items = append(m.items, it)
	}
}

// scalarTotals keeps the running sums wide so hospital-report scale
// inputs can never wrap an int32 platform int mid-fold.
type scalarTotals struct {
	saline, injections, antibodies, otRooms, generalBeds, nurses,
	ecg, ctScan, endoscopy, bp, ultra, xray int64
}

func (t *scalarTotals) add(inv *models.Inventory) {
	t.saline += int64(inv.Saline)
	t.injections += int64(inv.Injections)
	t.antibodies += int64(inv.Antibodies)
	t.otRooms += int64(inv.OTRooms)
	t.generalBeds += int64(inv.GeneralBeds)
	t.nurses += int64(inv.AvailableNursesCount)
	t.ecg += int64(inv.ECGMachines)
	t.ctScan += int64(inv.CTScan)
	t.endoscopy += int64(inv.Endoscopy)
	t.bp += int64(inv.BPMachines)
	t.ultra += int64(inv.Ultrasonography)
	t.xray += int64(inv.XrayMachines)
}

func (t *scalarTotals) apply(inv *models.Inventory) {
	inv.Saline = int(t.saline)
	inv.Injections = int(t.injections)
	inv.Antibodies = int(t.antibodies)
	inv.OTRooms = int(t.otRooms)
	inv.GeneralBeds = int(t.generalBeds)
	inv.AvailableNursesCount = int(t.nurses)
	inv.ECGMachines = int(t.ecg)
	inv.CTScan = int(t.ctScan)
	inv.Endoscopy = int(t.endoscopy)
	inv.BPMachines = int(t.bp)
	inv.Ultrasonography = int(t.ultra)
	inv.XrayMachines = int(t.xray)
}

// Package normalize converts untrusted AI extraction output into the
// canonical ResourceData shape. The upstream model output is inherently
// unreliable, so every field-level shape problem is coerced silently;
// the only hard failure is a payload that is not an object at all.
package normalize

import (
	"strconv"
	"strings"

	"github.com/tochi-dev/medisync/internal/apperrors"
	"github.com/tochi-dev/medisync/internal/models"
)

// Key returns the join key used for merge/deduplication matching:
// trimmed and lower-cased. The display name is kept verbatim elsewhere.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize coerces an arbitrary-shape extraction payload into a canonical
// record. Missing/invalid numerics become 0, missing/invalid lists become
// empty slices, entries without a usable name are dropped. Returns
// apperrors.ErrMalformedExtraction only when raw is not an object.
func Normalize(raw any) (*models.ResourceData, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return nil, apperrors.ErrMalformedExtraction
	}

	data := &models.ResourceData{
		Doctors: staffList(obj["doctors"]),
		Nurses:  staffList(obj["nurses"]),
	}

	inv, _ := obj["inventory"].(map[string]any)
	data.Inventory = models.Inventory{
		Medicines:            countedList(inv["medicines"]),
		Saline:               intField(inv["saline"]),
		Injections:           intField(inv["injections"]),
		Antibodies:           intField(inv["antibodies"]),
		OTRooms:              intField(inv["ot_rooms"]),
		GeneralBeds:          intField(inv["general_beds"]),
		AvailableNursesCount: intField(inv["available_nurses_count"]),
		Instruments:          countedList(inv["instruments"]),
		ECGMachines:          intField(inv["ecg_machines"]),
		CTScan:               intField(inv["ct_scan"]),
		Endoscopy:            intField(inv["endoscopy"]),
		BPMachines:           intField(inv["bp_machines"]),
		Ultrasonography:      intField(inv["ultrasonography"]),
		XrayMachines:         intField(inv["xray_machines"]),
		OtherEquipment:       countedList(inv["other_equipment"]),
	}

	return data, nil
}

func staffList(v any) []models.StaffMember {
	out := []models.StaffMember{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, it := range items {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(entry["name"])
		if strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, models.StaffMember{
			Name:          name,
			AvailableDays: stringField(entry["available_days"]),
			Time:          stringField(entry["time"]),
		})
	}
	return out
}

func countedList(v any) []models.CountedItem {
	out := []models.CountedItem{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, it := range items {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(entry["name"])
		if strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, models.CountedItem{
			Name:  name,
			Count: intField(entry["count"]),
		})
	}
	return out
}

// intField coerces a JSON value into a non-negative int. Gemini regularly
// quotes numbers, so numeric strings are accepted too.
func intField(v any) int {
	var n int
	switch x := v.(type) {
	case float64:
		n = int(x)
	case int:
		n = x
	case int64:
		n = int(x)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if ferr != nil {
				return 0
			}
			parsed = int(f)
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

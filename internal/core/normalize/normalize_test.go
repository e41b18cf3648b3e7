package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochi-dev/medisync/internal/apperrors"
	"github.com/tochi-dev/medisync/internal/core/normalize"
	"github.com/tochi-dev/medisync/internal/models"
)

func itemNames(items []models.CountedItem) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestNormalizeCoercesNullsAndBadShapes(t *testing.T) {
	payload := decode(t, `{
		"doctors": "none",
		"nurses": null,
		"inventory": {
			"saline": null,
			"injections": "12",
			"antibodies": -4,
			"general_beds": 7.0,
			"medicines": {"oops": true},
			"instruments": [
				{"name": "Scalpel", "count": "3"},
				{"count": 9},
				"garbage"
			]
		}
	}`)

	data, err := normalize.Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, []models.StaffMember{}, data.Doctors, "string in place of list coerces to empty")
	assert.Empty(t, data.Nurses)
	assert.Equal(t, 0, data.Inventory.Saline)
	assert.Equal(t, 12, data.Inventory.Injections)
	assert.Equal(t, 0, data.Inventory.Antibodies, "negatives clamp to zero")
	assert.Equal(t, 7, data.Inventory.GeneralBeds)
	assert.Equal(t, []string{}, itemNames(data.Inventory.Medicines))
	require.Len(t, data.Inventory.Instruments, 1, "nameless and non-object entries dropped")
	assert.Equal(t, "Scalpel", data.Inventory.Instruments[0].Name)
	assert.Equal(t, 3, data.Inventory.Instruments[0].Count)
}

func TestNormalizeEntirelyMissingInventory(t *testing.T) {
	data, err := normalize.Normalize(decode(t, `{}`))
	require.NoError(t, err)

	assert.NotNil(t, data.Doctors)
	assert.NotNil(t, data.Inventory.Medicines)
	assert.NotNil(t, data.Inventory.OtherEquipment)
	assert.Zero(t, data.Inventory.Saline)
	assert.Zero(t, data.Inventory.XrayMachines)
}

func TestNormalizeKeepsDisplayNames(t *testing.T) {
	data, err := normalize.Normalize(decode(t, `{
		"doctors": [{"name": "  Dr. A. Rao ", "available_days": "Mon-Fri", "time": "9-5"}]
	}`))
	require.NoError(t, err)

	require.Len(t, data.Doctors, 1)
	assert.Equal(t, "  Dr. A. Rao ", data.Doctors[0].Name, "display name kept verbatim")
	assert.Equal(t, "dr. a. rao", normalize.Key(data.Doctors[0].Name))
}

func TestNormalizeRejectsNonObjectPayload(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `[1,2,3]`, `42`, `null`} {
		_, err := normalize.Normalize(decode(t, raw))
		assert.ErrorIs(t, err, apperrors.ErrMalformedExtraction, raw)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "paracetamol", normalize.Key(" Paracetamol "))
	assert.Equal(t, "", normalize.Key("   "))
}

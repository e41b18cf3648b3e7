package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochi-dev/medisync/internal/apperrors"
	"github.com/tochi-dev/medisync/internal/models"
	"github.com/tochi-dev/medisync/internal/services"
)

func seedCompletedInventory(db *fakeDB, inv models.Inventory) {
	db.resources["seed"] = &models.ResourceRecord{
		ID:      "seed",
		OwnerID: owner,
		Status:  models.StatusCompleted,
		Data:    &models.ResourceData{Inventory: inv},
	}
}

func allocationInput() services.CreateInput {
	return services.CreateInput{
		DocumentID: "doc-1",
		Patient:    models.PatientInfo{Name: "Asha Verma", Age: "54", Gender: "F"},
		Prescription: models.PrescriptionDetails{
			Doctor:    "Dr. Mehta",
			Medicines: []string{"Paracetamol"},
			Diagnosis: "pneumonia",
		},
		Resources: models.AllocatedResources{BedType: "general", BedQuantity: 2, OxygenCylinders: 1},
		Notes:     "admit tonight",
	}
}

func TestCreateAllocationValidatesPatientName(t *testing.T) {
	db := newFakeDB()
	svc := services.NewAllocationService(db, 5)

	in := allocationInput()
	in.Patient.Name = "   "

	_, _, err := svc.Create(context.Background(), owner, in)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, db.allocations, "nothing persisted on validation failure")
}

func TestCreateAllocationPersistsAndReturnsAlerts(t *testing.T) {
	db := newFakeDB()
	seedCompletedInventory(db, models.Inventory{
		Saline: 20, Injections: 20, Antibodies: 20, OTRooms: 20,
		GeneralBeds: 6, AvailableNursesCount: 20, ECGMachines: 20, CTScan: 20,
		Endoscopy: 20, BPMachines: 20, Ultrasonography: 20, XrayMachines: 20,
	})
	svc := services.NewAllocationService(db, 5)

	alloc, alerts, err := svc.Create(context.Background(), owner, allocationInput())
	require.NoError(t, err)

	assert.Equal(t, models.AllocationAllocated, alloc.Status)
	require.Len(t, db.allocations, 1)

	// 6 beds minus the 2 just held leaves 4, below the threshold of 5.
	require.Len(t, alerts, 1)
	assert.Equal(t, "general_beds", alerts[0].Item)
	assert.Equal(t, 4, alerts[0].Count)
}

func TestCreateAllocationAlertsNeverBlock(t *testing.T) {
	db := newFakeDB()
	db.failListCompleted = true
	svc := services.NewAllocationService(db, 5)

	alloc, alerts, err := svc.Create(context.Background(), owner, allocationInput())
	require.NoError(t, err, "stock check failure must not block the allocation")
	assert.NotNil(t, alloc)
	assert.Empty(t, alerts)
}

func TestUpdateStatusRejectsUnknownState(t *testing.T) {
	db := newFakeDB()
	svc := services.NewAllocationService(db, 5)

	alloc, _, err := svc.Create(context.Background(), owner, allocationInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), owner, alloc.ID, "archived", "")
	assert.True(t, apperrors.IsValidation(err))

	updated, err := svc.UpdateStatus(context.Background(), owner, alloc.ID, models.AllocationCompleted, "discharged")
	require.NoError(t, err)
	assert.Equal(t, models.AllocationCompleted, updated.Status)
	assert.Equal(t, "discharged", updated.Notes)
}

func TestDeallocateFlipsStatusOnly(t *testing.T) {
	db := newFakeDB()
	seedCompletedInventory(db, models.Inventory{GeneralBeds: 10})
	svc := services.NewAllocationService(db, 5)

	alloc, _, err := svc.Create(context.Background(), owner, allocationInput())
	require.NoError(t, err)

	before, _, err := svc.CheckStock(context.Background(), owner)
	require.NoError(t, err)

	dealloc, err := svc.Deallocate(context.Background(), owner, alloc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AllocationDeallocated, dealloc.Status)

	after, inv, err := svc.CheckStock(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after), "deallocation does not replenish a persisted counter")
	assert.Equal(t, 10, inv.GeneralBeds)
}

func TestUpdateStatusUnknownAllocation(t *testing.T) {
	svc := services.NewAllocationService(newFakeDB(), 5)

	_, err := svc.UpdateStatus(context.Background(), owner, "missing", models.AllocationCompleted, "")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCheckStockReportsLowItems(t *testing.T) {
	db := newFakeDB()
	seedCompletedInventory(db, models.Inventory{
		Saline: 3, Injections: 20, Antibodies: 20, OTRooms: 20,
		GeneralBeds: 20, AvailableNursesCount: 20, ECGMachines: 20, CTScan: 20,
		Endoscopy: 20, BPMachines: 20, Ultrasonography: 20, XrayMachines: 20,
		Medicines: []models.CountedItem{{Name: "Paracetamol", Count: 2}},
	})
	svc := services.NewAllocationService(db, 5)

	alerts, inv, err := svc.CheckStock(context.Background(), owner)
	require.NoError(t, err)

	items := []string{}
	for _, a := range alerts {
		items = append(items, a.Item)
	}
	assert.ElementsMatch(t, []string{"saline", "Paracetamol"}, items)
	assert.Equal(t, 3, inv.Saline)
}

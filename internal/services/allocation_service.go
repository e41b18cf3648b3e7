package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tochi-dev/medisync/internal/apperrors"
	"github.com/tochi-dev/medisync/internal/core"
	"github.com/tochi-dev/medisync/internal/core/aggregate"
	"github.com/tochi-dev/medisync/internal/core/stock"
	"github.com/tochi-dev/medisync/internal/models"
)

// AllocationService is the allocation ledger: resource commitments
// against patients, plus the stock checks layered on the aggregated
// inventory view.
type AllocationService struct {
	db        core.DbClient
	threshold int
}

func NewAllocationService(db core.DbClient, threshold int) *AllocationService {
	if threshold <= 0 {
		threshold = stock.DefaultThreshold
	}
	return &AllocationService{db: db, threshold: threshold}
}

// CreateInput carries the caller-supplied allocation fields.
type CreateInput struct {
	DocumentID   string
	Patient      models.PatientInfo
	Prescription models.PrescriptionDetails
	Resources    models.AllocatedResources
	Notes        string
}

// Create persists a new allocation with status=allocated and runs a
// stock check against the bed-adjusted post-allocation inventory. The
// returned alerts are informational; they never block the allocation.
func (s *AllocationService) Create(ctx context.Context, ownerID string, in CreateInput) (*models.AllocationRecord, []models.StockAlert, error) {
	if strings.TrimSpace(in.Patient.Name) == "" {
		return nil, nil, apperrors.NewValidationError("patient name required")
	}

	alloc := &models.AllocationRecord{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		DocumentID:   in.DocumentID,
		Patient:      in.Patient,
		Prescription: in.Prescription,
		Resources:    in.Resources,
		Status:       models.AllocationAllocated,
		Notes:        in.Notes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.CreateAllocation(ctx, alloc); err != nil {
		return nil, nil, err
	}

	alerts := s.postAllocationAlerts(ctx, ownerID, in.Resources.BedQuantity)
	return alloc, alerts, nil
}

// postAllocationAlerts computes the stock view with the new bed hold
// applied. A failure here is logged, not surfaced: the allocation is
// already committed and alerts are advisory.
func (s *AllocationService) postAllocationAlerts(ctx context.Context, ownerID string, bedsHeld int) []models.StockAlert {
	records, err := s.db.ListCompletedResources(ctx, ownerID)
	if err != nil {
		log.Warn().Err(err).Str("owner_id", ownerID).Msg("post-allocation stock check skipped")
		return []models.StockAlert{}
	}
	snap := aggregate.Build(records)
	return stock.Check(stock.HoldBeds(snap.Inventory, bedsHeld), s.threshold)
}

func (s *AllocationService) Get(ctx context.Context, ownerID, id string) (*models.AllocationRecord, error) {
	alloc, err := s.db.GetAllocationByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if alloc == nil {
		return nil, apperrors.NewNotFoundError("allocation", id)
	}
	return alloc, nil
}

func (s *AllocationService) List(ctx context.Context, ownerID string) ([]models.AllocationRecord, error) {
	return s.db.ListAllocationsByOwner(ctx, ownerID)
}

// UpdateStatus transitions an allocation to any of the four states.
// Transitions are deliberately permissive; only enum membership is
// enforced.
func (s *AllocationService) UpdateStatus(ctx context.Context, ownerID, id, status, notes string) (*models.AllocationRecord, error) {
	if !models.ValidAllocationStatus(status) {
		return nil, apperrors.NewValidationError("invalid allocation status %q", status)
	}
	alloc, err := s.db.UpdateAllocationStatus(ctx, ownerID, id, status, notes)
	if err != nil {
		return nil, err
	}
	if alloc == nil {
		return nil, apperrors.NewNotFoundError("allocation", id)
	}
	return alloc, nil
}

// Deallocate releases the commitment by flipping status. Inventory counts
// stay derived from uploads only; nothing is re-added to a persisted pool.
func (s *AllocationService) Deallocate(ctx context.Context, ownerID, id string) (*models.AllocationRecord, error) {
	return s.UpdateStatus(ctx, ownerID, id, models.AllocationDeallocated, "")
}

// CheckStock recomputes the aggregated snapshot and returns all current
// low-stock alerts together with the full inventory for display.
func (s *AllocationService) CheckStock(ctx context.Context, ownerID string) ([]models.StockAlert, *models.Inventory, error) {
	records, err := s.db.ListCompletedResources(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	snap := aggregate.Build(records)
	alerts := stock.Check(snap.Inventory, s.threshold)
	return alerts, &snap.Inventory, nil
}

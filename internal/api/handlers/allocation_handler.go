package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tochi-dev/medisync/internal/models"
	"github.com/tochi-dev/medisync/internal/services"
)

type AllocationHandler struct {
	allocations *services.AllocationService
}

func NewAllocationHandler(allocations *services.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations}
}

type createAllocationRequest struct {
	DocumentID   string                     `json:"document_id"`
	Patient      models.PatientInfo         `json:"patient_info"`
	Prescription models.PrescriptionDetails `json:"prescription_details"`
	Resources    models.AllocatedResources  `json:"allocated_resources"`
	Notes        string                     `json:"notes"`
}

func (h *AllocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}

	var req createAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	alloc, alerts, err := h.allocations.Create(r.Context(), userID, services.CreateInput{
		DocumentID:   req.DocumentID,
		Patient:      req.Patient,
		Prescription: req.Prescription,
		Resources:    req.Resources,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"allocation": alloc,
		"alerts":     alerts,
	})
}

func (h *AllocationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	allocs, err := h.allocations.List(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, allocs)
}

func (h *AllocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	alloc, err := h.allocations.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alloc)
}

type updateAllocationRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *AllocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	var req updateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	alloc, err := h.allocations.UpdateStatus(r.Context(), userID, chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alloc)
}

func (h *AllocationHandler) Deallocate(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	alloc, err := h.allocations.Deallocate(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alloc)
}

func (h *AllocationHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	alerts, inventory, err := h.allocations.CheckStock(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"alerts":    alerts,
		"inventory": inventory,
	})
}

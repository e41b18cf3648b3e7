package models

import (
	"time"
)

// Processing states of a ResourceRecord.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Allocation states.
const (
	AllocationPending     = "pending"
	AllocationAllocated   = "allocated"
	AllocationDeallocated = "deallocated"
	AllocationCompleted   = "completed"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StaffMember is one doctor or nurse entry from an extracted report.
type StaffMember struct {
	Name          string `json:"name"`
	AvailableDays string `json:"available_days"`
	Time          string `json:"time"`
}

// CountedItem is a named inventory entry with a quantity
// (medicine, instrument or miscellaneous equipment).
type CountedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Inventory holds the countable resources of one report. After
// normalization every scalar is a non-negative int and every list
// is non-nil.
type Inventory struct {
	Medicines            []CountedItem `json:"medicines"`
	Saline               int           `json:"saline"`
	Injections           int           `json:"injections"`
	Antibodies           int           `json:"antibodies"`
	OTRooms              int           `json:"ot_rooms"`
	GeneralBeds          int           `json:"general_beds"`
	AvailableNursesCount int           `json:"available_nurses_count"`
	Instruments          []CountedItem `json:"instruments"`
	ECGMachines          int           `json:"ecg_machines"`
	CTScan               int           `json:"ct_scan"`
	Endoscopy            int           `json:"endoscopy"`
	BPMachines           int           `json:"bp_machines"`
	Ultrasonography      int           `json:"ultrasonography"`
	XrayMachines         int           `json:"xray_machines"`
	OtherEquipment       []CountedItem `json:"other_equipment"`
}

// ResourceData is the canonical structured payload of one completed upload.
type ResourceData struct {
	Doctors   []StaffMember `json:"doctors"`
	Nurses    []StaffMember `json:"nurses"`
	Inventory Inventory     `json:"inventory"`
}

// ResourceRecord represents one uploaded resource report document.
// It is written exactly twice: once on upload (status=processing) and
// once by the pipeline moving it to a terminal status.
type ResourceRecord struct {
	ID           string        `db:"id" json:"id"`
	OwnerID      string        `db:"owner_id" json:"owner_id"`
	OwnerEmail   string        `db:"owner_email" json:"owner_email"`
	FileName     string        `db:"file_name" json:"file_name"`
	FileSize     int64         `db:"file_size" json:"file_size"`
	StorageURL   string        `db:"storage_url" json:"storage_url"`
	Status       string        `db:"status" json:"processing_status"`
	RawText      string        `db:"raw_text" json:"raw_text,omitempty"`
	Data         *ResourceData `db:"resource_data" json:"resource_data,omitempty"`
	PageCount    int           `db:"page_count" json:"page_count"`
	ModelID      string        `db:"model_id" json:"model_id,omitempty"`
	ProcessedAt  *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
	ErrorMessage string        `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// SourceSummary is the listing metadata of one record contributing to a
// snapshot, used by callers to show "last updated".
type SourceSummary struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AggregatedSnapshot is the consolidated hospital-wide view derived from
// all completed records of one owner. Never persisted; recomputed on read.
type AggregatedSnapshot struct {
	Doctors   []StaffMember   `json:"doctors"`
	Nurses    []StaffMember   `json:"nurses"`
	Inventory Inventory       `json:"inventory"`
	Sources   []SourceSummary `json:"sources"`
}

// PatientInfo is the patient snapshot stored on an allocation.
type PatientInfo struct {
	Name      string `json:"name"`
	Age       string `json:"age"`
	Gender    string `json:"gender"`
	PatientID string `json:"patient_id"`
}

// PrescriptionDetails is the prescription snapshot stored on an allocation.
type PrescriptionDetails struct {
	Doctor    string   `json:"doctor"`
	Medicines []string `json:"medicines"`
	Diagnosis string   `json:"diagnosis"`
}

// NamedService is an additional allocated service (e.g. physiotherapy).
type NamedService struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// AllocatedResources are the quantities committed by one allocation.
type AllocatedResources struct {
	BedType           string         `json:"bed_type"`
	BedQuantity       int            `json:"bed_quantity"`
	OxygenCylinders   int            `json:"oxygen_cylinders"`
	DialysisSessions  int            `json:"dialysis_sessions"`
	DialysisFrequency string         `json:"dialysis_frequency"`
	OtherServices     []NamedService `json:"other_services"`
}

// AllocationRecord is one resource commitment against a patient, linked
// to the source document the prescription came from.
type AllocationRecord struct {
	ID           string              `db:"id" json:"id"`
	OwnerID      string              `db:"owner_id" json:"owner_id"`
	DocumentID   string              `db:"document_id" json:"document_id"`
	Patient      PatientInfo         `db:"patient_info" json:"patient_info"`
	Prescription PrescriptionDetails `db:"prescription" json:"prescription_details"`
	Resources    AllocatedResources  `db:"resources" json:"allocated_resources"`
	Status       string              `db:"status" json:"status"`
	Notes        string              `db:"notes" json:"notes"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// StockAlert flags one inventory item below the low-stock threshold.
// Recomputed on each check, never stored.
type StockAlert struct {
	Item      string `json:"item"`
	Count     int    `json:"count"`
	Threshold int    `json:"threshold"`
}

// AirQualityReading is the latest reading from the external AQI feed.
type AirQualityReading struct {
	City      string    `json:"city"`
	AQI       int       `json:"aqi"`
	PM25      float64   `json:"pm2_5"`
	PM10      float64   `json:"pm10"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ValidAllocationStatus reports whether s is one of the four allocation states.
func ValidAllocationStatus(s string) bool {
	switch s {
	case AllocationPending, AllocationAllocated, AllocationDeallocated, AllocationCompleted:
		return true
	}
	return false
}

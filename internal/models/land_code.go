package models

import "time"

// LandCodeStatus is the allocation state of a land code.
type LandCodeStatus string

const (
	LandCodeAvailable LandCodeStatus = "Available"
	LandCodeAssigned  LandCodeStatus = "Assigned"
)

// Valid reports whether s is a known land code status.
func (s LandCodeStatus) Valid() bool {
	return s == LandCodeAvailable || s == LandCodeAssigned
}

// LandCode is a unique region-scoped identifier handed out to field agents.
type LandCode struct {
	ID          int64          `json:"id"`
	Code        string         `json:"code"`
	StateID     string         `json:"state_id"`
	DistrictID  string         `json:"district_id"`
	TownID      string         `json:"town_id"`
	Status      LandCodeStatus `json:"status"`
	FarmerName  *string        `json:"farmer_name"`
	FarmerPhone *string        `json:"farmer_phone"`
	VillageName *string        `json:"village_name"`
	AllottedAt  *time.Time     `json:"allotted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Region scopes code generation to a town.
type Region struct {
	StateID    string `json:"state_id" binding:"required"`
	DistrictID string `json:"district_id" binding:"required"`
	TownID     string `json:"town_id" binding:"required"`
}

// LandCodeFilter narrows List and Stats. Empty fields are ignored.
type LandCodeFilter struct {
	StateID    string
	DistrictID string
	TownID     string
	Status     *LandCodeStatus
}

// AssignInput is a partial update of a land code.
type AssignInput struct {
	ID          int64           `json:"id"`
	Status      *LandCodeStatus `json:"status"`
	FarmerName  *string         `json:"farmer_name"`
	FarmerPhone *string         `json:"farmer_phone"`
	VillageName *string         `json:"village_name"`
}

// IsEmpty reports whether the input changes nothing.
func (in AssignInput) IsEmpty() bool {
	return in.Status == nil && in.FarmerName == nil && in.FarmerPhone == nil && in.VillageName == nil
}

// StatusCount is one row of the land code status breakdown.
type StatusCount struct {
	Status     LandCodeStatus `json:"status"`
	Count      int64          `json:"count"`
	Percentage float64        `json:"percentage"`
}

// LandCodeStats is the status breakdown for a filter.
type LandCodeStats struct {
	Total    int64         `json:"total"`
	ByStatus []StatusCount `json:"by_status"`
}

// BulkAssignResult reports the outcome of one item in a bulk assignment.
type BulkAssignResult struct {
	ID       int64     `json:"id"`
	LandCode *LandCode `json:"land_code,omitempty"`
	Error    string    `json:"error,omitempty"`
}

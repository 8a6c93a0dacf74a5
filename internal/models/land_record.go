package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordStatus is the publication state of a land record.
type RecordStatus string

const (
	StatusDraft     RecordStatus = "draft"
	StatusPublished RecordStatus = "published"
)

// Valid reports whether s is a known record status.
func (s RecordStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// VerificationState is the verifier's decision on a land record.
type VerificationState string

const (
	VerificationPending  VerificationState = "pending"
	VerificationVerified VerificationState = "verified"
	VerificationRejected VerificationState = "rejected"
)

// Valid reports whether v is a known verification state.
func (v VerificationState) Valid() bool {
	switch v {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// LandRecord is the six-section aggregate keyed by LandID.
type LandRecord struct {
	LandID   string          `json:"land_id"`
	Location LocationSection `json:"land_location"`
	Farmer   FarmerSection   `json:"farmer_details"`
	Parcel   ParcelSection   `json:"land_details"`
	GPS      GPSSection      `json:"gps_tracking"`
	Dispute  DisputeSection  `json:"dispute_details"`
	Media    MediaSection    `json:"document_media"`
}

// LocationSection is the aggregate root row (land_location).
type LocationSection struct {
	OwnerID      string            `json:"owner_id"`
	State        string            `json:"state"`
	District     string            `json:"district"`
	Mandal       *string           `json:"mandal"`
	Village      *string           `json:"village"`
	Location     *string           `json:"location"`
	Status       RecordStatus      `json:"status"`
	Verification VerificationState `json:"verification"`
	Remarks      *string           `json:"remarks"`
	VerifierID   *string           `json:"verifier_id"`
	VerifiedAt   *time.Time        `json:"verified_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// FarmerSection holds the seller's contact and profile (farmer_details).
type FarmerSection struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	WhatsappNumber *string `json:"whatsapp_number"`
	Literacy       *string `json:"literacy"`
	AgeGroup       *string `json:"age_group"`
	Nature         *string `json:"nature"`
	LandOwnership  *string `json:"land_ownership"`
	Mortgage       *string `json:"mortgage"`
}

// ParcelSection holds area, pricing and amenities (land_details).
type ParcelSection struct {
	LandArea       decimal.NullDecimal `json:"land_area"`
	Guntas         decimal.NullDecimal `json:"guntas"`
	PricePerAcre   decimal.NullDecimal `json:"price_per_acre"`
	TotalLandPrice decimal.NullDecimal `json:"total_land_price"`
	PassbookPhoto  *string             `json:"passbook_photo"`
	LandType       *string             `json:"land_type"`
	WaterSource    Tags                `json:"water_source"`
	Garden         Tags                `json:"garden"`
	ShedDetails    Tags                `json:"shed_details"`
	FarmPond       *string             `json:"farm_pond"`
	Residential    *string             `json:"residential"`
	Fencing        *string             `json:"fencing"`
}

// GPSSection holds coordinates and boundary references (gps_tracking).
type GPSSection struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	RoadPath   *string  `json:"road_path"`
	LandBorder *string  `json:"land_border"`
}

// DisputeSection holds ownership dispute notes (dispute_details).
type DisputeSection struct {
	DisputeType              *string `json:"dispute_type"`
	SiblingsInvolveInDispute *string `json:"siblings_involve_in_dispute"`
	PathToLand               *string `json:"path_to_land"`
}

// MediaSection holds ordered photo and video references (document_media).
type MediaSection struct {
	LandPhoto []string `json:"land_photo"`
	LandVideo []string `json:"land_video"`
}

// RecordFilter narrows ListRecords. Zero values are ignored.
// Numeric bounds are upper limits (value <= bound).
type RecordFilter struct {
	Status          *RecordStatus
	Verification    *VerificationState
	LandID          string
	OwnerID         string
	State           string
	District        string
	MaxPricePerAcre *decimal.Decimal
	MaxTotalPrice   *decimal.Decimal
	MaxLandArea     *decimal.Decimal
	Limit           int
	Offset          int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Normalize clamps paging values into the supported range.
func (f *RecordFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

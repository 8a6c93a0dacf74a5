package models

import "github.com/shopspring/decimal"

// RecordPatch is a partial update of a land record.
// A nil field means "leave the column untouched".
type RecordPatch struct {
	Location LocationPatch
	Farmer   FarmerPatch
	Parcel   ParcelPatch
	GPS      GPSPatch
	Dispute  DisputePatch
	Media    MediaPatch
}

// IsEmpty reports whether no section carries a user change.
// A stamped owner_id on its own does not count.
func (p RecordPatch) IsEmpty() bool {
	return !p.Location.HasContent() &&
		p.Farmer.IsEmpty() &&
		p.Parcel.IsEmpty() &&
		p.GPS.IsEmpty() &&
		p.Dispute.IsEmpty() &&
		p.Media.IsEmpty()
}

type LocationPatch struct {
	OwnerID      *string
	State        *string
	District     *string
	Mandal       *string
	Village      *string
	Location     *string
	Status       *RecordStatus
	Verification *VerificationState
	Remarks      *string
}

func (p LocationPatch) IsEmpty() bool {
	return p.OwnerID == nil && p.State == nil && p.District == nil &&
		p.Mandal == nil && p.Village == nil && p.Location == nil &&
		p.Status == nil && p.Verification == nil && p.Remarks == nil
}

// HasContent reports whether anything besides owner_id is set.
// owner_id alone is stamped by the router and is not a user edit.
func (p LocationPatch) HasContent() bool {
	stripped := p
	stripped.OwnerID = nil
	return !stripped.IsEmpty()
}

type FarmerPatch struct {
	Name           *string
	Phone          *string
	WhatsappNumber *string
	Literacy       *string
	AgeGroup       *string
	Nature         *string
	LandOwnership  *string
	Mortgage       *string
}

func (p FarmerPatch) IsEmpty() bool {
	return p.Name == nil && p.Phone == nil && p.WhatsappNumber == nil &&
		p.Literacy == nil && p.AgeGroup == nil && p.Nature == nil &&
		p.LandOwnership == nil && p.Mortgage == nil
}

type ParcelPatch struct {
	LandArea       *decimal.Decimal
	Guntas         *decimal.Decimal
	PricePerAcre   *decimal.Decimal
	TotalLandPrice *decimal.Decimal
	PassbookPhoto  *string
	LandType       *string
	WaterSource    Tags
	Garden         Tags
	ShedDetails    Tags
	FarmPond       *string
	Residential    *string
	Fencing        *string
}

func (p ParcelPatch) IsEmpty() bool {
	return p.LandArea == nil && p.Guntas == nil && p.PricePerAcre == nil &&
		p.TotalLandPrice == nil && p.PassbookPhoto == nil && p.LandType == nil &&
		p.WaterSource == nil && p.Garden == nil && p.ShedDetails == nil &&
		p.FarmPond == nil && p.Residential == nil && p.Fencing == nil
}

type GPSPatch struct {
	Latitude   *float64
	Longitude  *float64
	RoadPath   *string
	LandBorder *string
}

func (p GPSPatch) IsEmpty() bool {
	return p.Latitude == nil && p.Longitude == nil && p.RoadPath == nil && p.LandBorder == nil
}

type DisputePatch struct {
	DisputeType              *string
	SiblingsInvolveInDispute *string
	PathToLand               *string
}

func (p DisputePatch) IsEmpty() bool {
	return p.DisputeType == nil && p.SiblingsInvolveInDispute == nil && p.PathToLand == nil
}

type MediaPatch struct {
	LandPhoto []string
	LandVideo []string
}

func (p MediaPatch) IsEmpty() bool {
	return p.LandPhoto == nil && p.LandVideo == nil
}

package routing

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// TableVersion identifies the field table below. Bump it whenever a field is
// added, removed or moves to a different section.
const TableVersion = 4

// Section names one of the six land record tables.
type Section string

const (
	SectionLocation Section = "land_location"
	SectionFarmer   Section = "farmer_details"
	SectionParcel   Section = "land_details"
	SectionGPS      Section = "gps_tracking"
	SectionDispute  Section = "dispute_details"
	SectionMedia    Section = "document_media"
)

// Encoding is the canonical form a raw input value is parsed into.
type Encoding string

const (
	EncodingText         Encoding = "text"
	EncodingDecimal      Encoding = "decimal"
	EncodingLatitude     Encoding = "latitude"
	EncodingLongitude    Encoding = "longitude"
	EncodingStatus       Encoding = "status"
	EncodingVerification Encoding = "verification"
	EncodingTags         Encoding = "tags"
	EncodingList         Encoding = "list"
)

// Field is one entry of the routing table.
type Field struct {
	Name     string
	Section  Section
	Encoding Encoding
	// VerificationOnly fields are routed only in verification mode.
	VerificationOnly bool
	// NormalOnly fields are owner edits and are ignored in verification mode.
	NormalOnly bool
	assign           func(p *models.RecordPatch, values []string) (bool, error)
}

var table = []Field{
	text("state", SectionLocation, func(p *models.RecordPatch) **string { return &p.Location.State }),
	text("district", SectionLocation, func(p *models.RecordPatch) **string { return &p.Location.District }),
	text("mandal", SectionLocation, func(p *models.RecordPatch) **string { return &p.Location.Mandal }),
	text("village", SectionLocation, func(p *models.RecordPatch) **string { return &p.Location.Village }),
	text("location", SectionLocation, func(p *models.RecordPatch) **string { return &p.Location.Location }),
	{Name: "status", Section: SectionLocation, Encoding: EncodingStatus, NormalOnly: true, assign: assignStatus},
	{Name: "verification", Section: SectionLocation, Encoding: EncodingVerification, VerificationOnly: true, assign: assignVerification},
	verificationOnly(text("remarks", SectionLocation, func(p *models.RecordPatch) **string { return &p.Location.Remarks })),

	text("name", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.Name }),
	text("phone", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.Phone }),
	text("whatsapp_number", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.WhatsappNumber }),
	text("literacy", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.Literacy }),
	text("age_group", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.AgeGroup }),
	text("nature", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.Nature }),
	text("land_ownership", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.LandOwnership }),
	text("mortgage", SectionFarmer, func(p *models.RecordPatch) **string { return &p.Farmer.Mortgage }),

	number("land_area", areaColumn, func(p *models.RecordPatch) **decimal.Decimal { return &p.Parcel.LandArea }),
	number("guntas", areaColumn, func(p *models.RecordPatch) **decimal.Decimal { return &p.Parcel.Guntas }),
	number("price_per_acre", priceColumn, func(p *models.RecordPatch) **decimal.Decimal { return &p.Parcel.PricePerAcre }),
	number("total_land_price", priceColumn, func(p *models.RecordPatch) **decimal.Decimal { return &p.Parcel.TotalLandPrice }),
	text("passbook_photo", SectionParcel, func(p *models.RecordPatch) **string { return &p.Parcel.PassbookPhoto }),
	text("land_type", SectionParcel, func(p *models.RecordPatch) **string { return &p.Parcel.LandType }),
	tags("water_source", func(p *models.RecordPatch) *models.Tags { return &p.Parcel.WaterSource }),
	tags("garden", func(p *models.RecordPatch) *models.Tags { return &p.Parcel.Garden }),
	tags("shed_details", func(p *models.RecordPatch) *models.Tags { return &p.Parcel.ShedDetails }),
	text("farm_pond", SectionParcel, func(p *models.RecordPatch) **string { return &p.Parcel.FarmPond }),
	text("residential", SectionParcel, func(p *models.RecordPatch) **string { return &p.Parcel.Residential }),
	text("fencing", SectionParcel, func(p *models.RecordPatch) **string { return &p.Parcel.Fencing }),

	coordinate("latitude", EncodingLatitude, 90, func(p *models.RecordPatch) **float64 { return &p.GPS.Latitude }),
	coordinate("longitude", EncodingLongitude, 180, func(p *models.RecordPatch) **float64 { return &p.GPS.Longitude }),
	text("road_path", SectionGPS, func(p *models.RecordPatch) **string { return &p.GPS.RoadPath }),
	text("land_border", SectionGPS, func(p *models.RecordPatch) **string { return &p.GPS.LandBorder }),

	text("dispute_type", SectionDispute, func(p *models.RecordPatch) **string { return &p.Dispute.DisputeType }),
	text("siblings_involve_in_dispute", SectionDispute, func(p *models.RecordPatch) **string { return &p.Dispute.SiblingsInvolveInDispute }),
	text("path_to_land", SectionDispute, func(p *models.RecordPatch) **string { return &p.Dispute.PathToLand }),

	list("land_photo", func(p *models.RecordPatch) *[]string { return &p.Media.LandPhoto }),
	list("land_video", func(p *models.RecordPatch) *[]string { return &p.Media.LandVideo }),
}

// aliases maps legacy client spellings onto table fields.
var aliases = map[string]string{
	"residental": "residential",
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(table))
	for _, f := range table {
		m[f.Name] = f
	}
	return m
}()

// Lookup returns the table entry for a business field name, resolving aliases.
func Lookup(name string) (Field, bool) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	f, ok := byName[name]
	return f, ok
}

// Fields returns the routing table in declaration order.
func Fields() []Field {
	out := make([]Field, len(table))
	copy(out, table)
	return out
}

// FieldsBySection groups field names per section, sorted by name.
func FieldsBySection() map[Section][]string {
	out := make(map[Section][]string)
	for _, f := range table {
		out[f.Section] = append(out[f.Section], f.Name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}

func verificationOnly(f Field) Field {
	f.VerificationOnly = true
	return f
}

// firstValue returns the first non-blank value, trimmed.
func firstValue(values []string) (string, bool) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

func text(name string, section Section, target func(*models.RecordPatch) **string) Field {
	return Field{
		Name: name, Section: section, Encoding: EncodingText,
		assign: func(p *models.RecordPatch, values []string) (bool, error) {
			v, ok := firstValue(values)
			if !ok {
				return false, nil
			}
			*target(p) = &v
			return true, nil
		},
	}
}

// Precision mirrors a NUMERIC(precision, scale) column.
type Precision struct {
	Digits int32
	Scale  int32
}

var (
	areaColumn  = Precision{Digits: 14, Scale: 4}
	priceColumn = Precision{Digits: 16, Scale: 2}
)

// Limit is the smallest magnitude the column cannot hold.
func (p Precision) Limit() decimal.Decimal {
	return decimal.New(1, p.Digits-p.Scale)
}

func number(name string, prec Precision, target func(*models.RecordPatch) **decimal.Decimal) Field {
	return Field{
		Name: name, Section: SectionParcel, Encoding: EncodingDecimal,
		assign: func(p *models.RecordPatch, values []string) (bool, error) {
			v, ok := firstValue(values)
			if !ok {
				return false, nil
			}
			d, err := decimal.NewFromString(v)
			if err != nil {
				return false, fieldError(name, "must be a number")
			}
			if d.IsNegative() {
				return false, fieldError(name, "must not be negative")
			}
			d = d.Round(prec.Scale)
			if d.GreaterThanOrEqual(prec.Limit()) {
				return false, fieldError(name, "must be less than "+prec.Limit().String())
			}
			*target(p) = &d
			return true, nil
		},
	}
}

func coordinate(name string, enc Encoding, bound float64, target func(*models.RecordPatch) **float64) Field {
	return Field{
		Name: name, Section: SectionGPS, Encoding: enc,
		assign: func(p *models.RecordPatch, values []string) (bool, error) {
			v, ok := firstValue(values)
			if !ok {
				return false, nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return false, fieldError(name, "must be a number")
			}
			if f < -bound || f > bound {
				return false, fieldError(name, "must be between -"+strconv.Itoa(int(bound))+" and "+strconv.Itoa(int(bound)))
			}
			*target(p) = &f
			return true, nil
		},
	}
}

func tags(name string, target func(*models.RecordPatch) *models.Tags) Field {
	return Field{
		Name: name, Section: SectionParcel, Encoding: EncodingTags,
		assign: func(p *models.RecordPatch, values []string) (bool, error) {
			parsed, err := models.ParseTags(values)
			if err != nil {
				return false, fieldError(name, err.Error())
			}
			if parsed == nil {
				return false, nil
			}
			*target(p) = parsed
			return true, nil
		},
	}
}

func list(name string, target func(*models.RecordPatch) *[]string) Field {
	return Field{
		Name: name, Section: SectionMedia, Encoding: EncodingList,
		assign: func(p *models.RecordPatch, values []string) (bool, error) {
			parsed, err := models.ParseTags(values)
			if err != nil {
				return false, fieldError(name, err.Error())
			}
			if parsed == nil {
				return false, nil
			}
			*target(p) = parsed.Names()
			return true, nil
		},
	}
}

func assignStatus(p *models.RecordPatch, values []string) (bool, error) {
	v, ok := firstValue(values)
	if !ok {
		return false, nil
	}
	status := models.RecordStatus(strings.ToLower(v))
	if !status.Valid() {
		return false, fieldError("status", "must be draft or published")
	}
	p.Location.Status = &status
	return true, nil
}

func assignVerification(p *models.RecordPatch, values []string) (bool, error) {
	v, ok := firstValue(values)
	if !ok {
		return false, nil
	}
	state := models.VerificationState(strings.ToLower(v))
	if !state.Valid() {
		return false, fieldError("verification", "must be pending, verified or rejected")
	}
	p.Location.Verification = &state
	return true, nil
}

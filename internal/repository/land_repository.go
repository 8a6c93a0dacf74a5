package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// LandIDPrefix is prepended to the land_id_seq value to form a land ID.
const LandIDPrefix = "LAND-"

// LandRepository defines data access for the six-section land record.
// Every method takes the Querier to run on so callers control transactions.
type LandRepository interface {
	// NextLandID draws the next value from land_id_seq. Values are never reused,
	// even when the surrounding transaction rolls back.
	NextLandID(ctx context.Context, q database.Querier) (string, error)

	// Insert writes all six sections for a new record.
	// Absent patch fields are stored as NULL or an empty list.
	Insert(ctx context.Context, q database.Querier, landID string, patch models.RecordPatch) error

	// LockLocation reads the root row with SELECT ... FOR UPDATE.
	// Returns nil, nil if the record does not exist.
	LockLocation(ctx context.Context, q database.Querier, landID string) (*models.LocationSection, error)

	// ApplyPatch updates only the sections present in patch and bumps updated_at.
	ApplyPatch(ctx context.Context, q database.Querier, landID string, patch models.RecordPatch) error

	// StampVerified records who verified the record and when.
	StampVerified(ctx context.Context, q database.Querier, landID, verifierID string, at time.Time) error

	// Get returns the assembled record. Returns nil, nil if not found.
	Get(ctx context.Context, q database.Querier, landID string) (*models.LandRecord, error)

	// List returns records matching filter, newest first.
	List(ctx context.Context, q database.Querier, filter models.RecordFilter) ([]models.LandRecord, error)

	// Delete removes the root row; sections, ledger rows and purchase requests cascade.
	// Returns false if nothing was deleted.
	Delete(ctx context.Context, q database.Querier, landID string) (bool, error)

	// Exists reports whether a record with landID exists.
	Exists(ctx context.Context, q database.Querier, landID string) (bool, error)
}

type landRepository struct{}

// NewLandRepository creates a new instance of LandRepository.
func NewLandRepository() LandRepository {
	return &landRepository{}
}

func (r *landRepository) NextLandID(ctx context.Context, q database.Querier) (string, error) {
	var n int64
	if err := q.QueryRow(ctx, `SELECT nextval('land_id_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to draw land id: %w", err)
	}
	return fmt.Sprintf("%s%d", LandIDPrefix, n), nil
}

func (r *landRepository) Insert(ctx context.Context, q database.Querier, landID string, patch models.RecordPatch) error {
	loc := patch.Location
	status := models.StatusDraft
	if loc.Status != nil {
		status = *loc.Status
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO land_location (land_id, owner_id, state, district, mandal, village, location, status, verification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')`,
		landID, loc.OwnerID, loc.State, loc.District, loc.Mandal, loc.Village, loc.Location, status,
	); err != nil {
		return fmt.Errorf("failed to insert land_location for %s: %w", landID, err)
	}

	f := patch.Farmer
	if _, err := q.Exec(ctx, `
		INSERT INTO farmer_details (land_id, name, phone, whatsapp_number, literacy, age_group, nature, land_ownership, mortgage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		landID, f.Name, f.Phone, f.WhatsappNumber, f.Literacy, f.AgeGroup, f.Nature, f.LandOwnership, f.Mortgage,
	); err != nil {
		return fmt.Errorf("failed to insert farmer_details for %s: %w", landID, err)
	}

	p := patch.Parcel
	if _, err := q.Exec(ctx, `
		INSERT INTO land_details (land_id, land_area, guntas, price_per_acre, total_land_price, passbook_photo,
			land_type, water_source, garden, shed_details, farm_pond, residential, fencing)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			COALESCE($8::jsonb, '[]'::jsonb), COALESCE($9::jsonb, '[]'::jsonb), COALESCE($10::jsonb, '[]'::jsonb),
			$11, $12, $13)`,
		landID, p.LandArea, p.Guntas, p.PricePerAcre, p.TotalLandPrice, p.PassbookPhoto,
		p.LandType, p.WaterSource, p.Garden, p.ShedDetails, p.FarmPond, p.Residential, p.Fencing,
	); err != nil {
		return fmt.Errorf("failed to insert land_details for %s: %w", landID, err)
	}

	g := patch.GPS
	if _, err := q.Exec(ctx, `
		INSERT INTO gps_tracking (land_id, latitude, longitude, road_path, land_border)
		VALUES ($1, $2, $3, $4, $5)`,
		landID, g.Latitude, g.Longitude, g.RoadPath, g.LandBorder,
	); err != nil {
		return fmt.Errorf("failed to insert gps_tracking for %s: %w", landID, err)
	}

	d := patch.Dispute
	if _, err := q.Exec(ctx, `
		INSERT INTO dispute_details (land_id, dispute_type, siblings_involve_in_dispute, path_to_land)
		VALUES ($1, $2, $3, $4)`,
		landID, d.DisputeType, d.SiblingsInvolveInDispute, d.PathToLand,
	); err != nil {
		return fmt.Errorf("failed to insert dispute_details for %s: %w", landID, err)
	}

	m := patch.Media
	if _, err := q.Exec(ctx, `
		INSERT INTO document_media (land_id, land_photo, land_video)
		VALUES ($1, COALESCE($2::text[], '{}'), COALESCE($3::text[], '{}'))`,
		landID, m.LandPhoto, m.LandVideo,
	); err != nil {
		return fmt.Errorf("failed to insert document_media for %s: %w", landID, err)
	}

	return nil
}

func (r *landRepository) LockLocation(ctx context.Context, q database.Querier, landID string) (*models.LocationSection, error) {
	var loc models.LocationSection
	err := q.QueryRow(ctx, `
		SELECT owner_id, state, district, mandal, village, location, status, verification,
			remarks, verifier_id, verified_at, created_at, updated_at
		FROM land_location
		WHERE land_id = $1
		FOR UPDATE`, landID,
	).Scan(
		&loc.OwnerID, &loc.State, &loc.District, &loc.Mandal, &loc.Village, &loc.Location,
		&loc.Status, &loc.Verification, &loc.Remarks, &loc.VerifierID, &loc.VerifiedAt,
		&loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock land_location %s: %w", landID, err)
	}
	return &loc, nil
}

// setList accumulates "column = $n" assignments for a single UPDATE.
// Column names always come from constants in this file.
type setList struct {
	sets []string
	args []any
}

func (s *setList) add(column string, value any) {
	s.args = append(s.args, value)
	s.sets = append(s.sets, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setList) addRaw(expr string) {
	s.sets = append(s.sets, expr)
}

func (s *setList) empty() bool {
	return len(s.sets) == 0
}

// exec runs UPDATE table SET ... WHERE land_id = $n.
func (s *setList) exec(ctx context.Context, q database.Querier, table, landID string) error {
	if s.empty() {
		return nil
	}
	args := append(s.args, landID)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE land_id = $%d", table, strings.Join(s.sets, ", "), len(args))
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to update %s for %s: %w", table, landID, err)
	}
	return nil
}

func (r *landRepository) ApplyPatch(ctx context.Context, q database.Querier, landID string, patch models.RecordPatch) error {
	var loc setList
	if v := patch.Location.OwnerID; v != nil {
		loc.add("owner_id", *v)
	}
	if v := patch.Location.State; v != nil {
		loc.add("state", *v)
	}
	if v := patch.Location.District; v != nil {
		loc.add("district", *v)
	}
	if v := patch.Location.Mandal; v != nil {
		loc.add("mandal", *v)
	}
	if v := patch.Location.Village; v != nil {
		loc.add("village", *v)
	}
	if v := patch.Location.Location; v != nil {
		loc.add("location", *v)
	}
	if v := patch.Location.Status; v != nil {
		loc.add("status", string(*v))
	}
	if v := patch.Location.Verification; v != nil {
		loc.add("verification", string(*v))
	}
	// An empty remarks value clears the column
	if v := patch.Location.Remarks; v != nil {
		loc.add("remarks", nullableText(*v))
	}
	loc.addRaw("updated_at = NOW()")
	if err := loc.exec(ctx, q, "land_location", landID); err != nil {
		return err
	}

	var farmer setList
	if v := patch.Farmer.Name; v != nil {
		farmer.add("name", *v)
	}
	if v := patch.Farmer.Phone; v != nil {
		farmer.add("phone", *v)
	}
	if v := patch.Farmer.WhatsappNumber; v != nil {
		farmer.add("whatsapp_number", *v)
	}
	if v := patch.Farmer.Literacy; v != nil {
		farmer.add("literacy", *v)
	}
	if v := patch.Farmer.AgeGroup; v != nil {
		farmer.add("age_group", *v)
	}
	if v := patch.Farmer.Nature; v != nil {
		farmer.add("nature", *v)
	}
	if v := patch.Farmer.LandOwnership; v != nil {
		farmer.add("land_ownership", *v)
	}
	if v := patch.Farmer.Mortgage; v != nil {
		farmer.add("mortgage", *v)
	}
	if err := farmer.exec(ctx, q, "farmer_details", landID); err != nil {
		return err
	}

	var parcel setList
	if v := patch.Parcel.LandArea; v != nil {
		parcel.add("land_area", *v)
	}
	if v := patch.Parcel.Guntas; v != nil {
		parcel.add("guntas", *v)
	}
	if v := patch.Parcel.PricePerAcre; v != nil {
		parcel.add("price_per_acre", *v)
	}
	if v := patch.Parcel.TotalLandPrice; v != nil {
		parcel.add("total_land_price", *v)
	}
	if v := patch.Parcel.PassbookPhoto; v != nil {
		parcel.add("passbook_photo", *v)
	}
	if v := patch.Parcel.LandType; v != nil {
		parcel.add("land_type", *v)
	}
	if v := patch.Parcel.WaterSource; v != nil {
		parcel.add("water_source", v)
	}
	if v := patch.Parcel.Garden; v != nil {
		parcel.add("garden", v)
	}
	if v := patch.Parcel.ShedDetails; v != nil {
		parcel.add("shed_details", v)
	}
	if v := patch.Parcel.FarmPond; v != nil {
		parcel.add("farm_pond", *v)
	}
	if v := patch.Parcel.Residential; v != nil {
		parcel.add("residential", *v)
	}
	if v := patch.Parcel.Fencing; v != nil {
		parcel.add("fencing", *v)
	}
	if err := parcel.exec(ctx, q, "land_details", landID); err != nil {
		return err
	}

	var gps setList
	if v := patch.GPS.Latitude; v != nil {
		gps.add("latitude", *v)
	}
	if v := patch.GPS.Longitude; v != nil {
		gps.add("longitude", *v)
	}
	if v := patch.GPS.RoadPath; v != nil {
		gps.add("road_path", *v)
	}
	if v := patch.GPS.LandBorder; v != nil {
		gps.add("land_border", *v)
	}
	if err := gps.exec(ctx, q, "gps_tracking", landID); err != nil {
		return err
	}

	var dispute setList
	if v := patch.Dispute.DisputeType; v != nil {
		dispute.add("dispute_type", *v)
	}
	if v := patch.Dispute.SiblingsInvolveInDispute; v != nil {
		dispute.add("siblings_involve_in_dispute", *v)
	}
	if v := patch.Dispute.PathToLand; v != nil {
		dispute.add("path_to_land", *v)
	}
	if err := dispute.exec(ctx, q, "dispute_details", landID); err != nil {
		return err
	}

	var media setList
	if v := patch.Media.LandPhoto; v != nil {
		media.add("land_photo", v)
	}
	if v := patch.Media.LandVideo; v != nil {
		media.add("land_video", v)
	}
	return media.exec(ctx, q, "document_media", landID)
}

func (r *landRepository) StampVerified(ctx context.Context, q database.Querier, landID, verifierID string, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE land_location
		SET verifier_id = $1, verified_at = $2, updated_at = NOW()
		WHERE land_id = $3`, verifierID, at, landID)
	if err != nil {
		return fmt.Errorf("failed to stamp verification for %s: %w", landID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to stamp verification for %s: record vanished", landID)
	}
	return nil
}

// recordSelect reads all six sections in one round trip.
// Satellite rows always exist, so inner joins are safe.
const recordSelect = `
	SELECT
		l.land_id, l.owner_id, l.state, l.district, l.mandal, l.village, l.location,
		l.status, l.verification, l.remarks, l.verifier_id, l.verified_at, l.created_at, l.updated_at,
		f.name, f.phone, f.whatsapp_number, f.literacy, f.age_group, f.nature, f.land_ownership, f.mortgage,
		d.land_area, d.guntas, d.price_per_acre, d.total_land_price, d.passbook_photo, d.land_type,
		d.water_source, d.garden, d.shed_details, d.farm_pond, d.residential, d.fencing,
		g.latitude, g.longitude, g.road_path, g.land_border,
		x.dispute_type, x.siblings_involve_in_dispute, x.path_to_land,
		m.land_photo, m.land_video
	FROM land_location l
	JOIN farmer_details f ON f.land_id = l.land_id
	JOIN land_details d ON d.land_id = l.land_id
	JOIN gps_tracking g ON g.land_id = l.land_id
	JOIN dispute_details x ON x.land_id = l.land_id
	JOIN document_media m ON m.land_id = l.land_id`

// recordScanTargets returns scan destinations matching recordSelect's column order.
func recordScanTargets(rec *models.LandRecord) []any {
	l, f, d, g, x, m := &rec.Location, &rec.Farmer, &rec.Parcel, &rec.GPS, &rec.Dispute, &rec.Media
	return []any{
		&rec.LandID, &l.OwnerID, &l.State, &l.District, &l.Mandal, &l.Village, &l.Location,
		&l.Status, &l.Verification, &l.Remarks, &l.VerifierID, &l.VerifiedAt, &l.CreatedAt, &l.UpdatedAt,
		&f.Name, &f.Phone, &f.WhatsappNumber, &f.Literacy, &f.AgeGroup, &f.Nature, &f.LandOwnership, &f.Mortgage,
		&d.LandArea, &d.Guntas, &d.PricePerAcre, &d.TotalLandPrice, &d.PassbookPhoto, &d.LandType,
		&d.WaterSource, &d.Garden, &d.ShedDetails, &d.FarmPond, &d.Residential, &d.Fencing,
		&g.Latitude, &g.Longitude, &g.RoadPath, &g.LandBorder,
		&x.DisputeType, &x.SiblingsInvolveInDispute, &x.PathToLand,
		&m.LandPhoto, &m.LandVideo,
	}
}

func (r *landRepository) Get(ctx context.Context, q database.Querier, landID string) (*models.LandRecord, error) {
	var rec models.LandRecord
	err := q.QueryRow(ctx, recordSelect+` WHERE l.land_id = $1`, landID).Scan(recordScanTargets(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query land record %s: %w", landID, err)
	}
	return &rec, nil
}

func (r *landRepository) List(ctx context.Context, q database.Querier, filter models.RecordFilter) ([]models.LandRecord, error) {
	filter.Normalize()

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		where = append(where, "l.status = "+arg(string(*filter.Status)))
	}
	if filter.Verification != nil {
		where = append(where, "l.verification = "+arg(string(*filter.Verification)))
	}
	if filter.LandID != "" {
		where = append(where, "l.land_id = "+arg(filter.LandID))
	}
	if filter.OwnerID != "" {
		where = append(where, "l.owner_id = "+arg(filter.OwnerID))
	}
	if filter.State != "" {
		where = append(where, "l.state ILIKE "+arg("%"+filter.State+"%"))
	}
	if filter.District != "" {
		where = append(where, "l.district ILIKE "+arg("%"+filter.District+"%"))
	}
	if filter.MaxPricePerAcre != nil {
		where = append(where, "d.price_per_acre <= "+arg(*filter.MaxPricePerAcre))
	}
	if filter.MaxTotalPrice != nil {
		where = append(where, "d.total_land_price <= "+arg(*filter.MaxTotalPrice))
	}
	if filter.MaxLandArea != nil {
		where = append(where, "d.land_area <= "+arg(*filter.MaxLandArea))
	}

	sql := recordSelect
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += fmt.Sprintf(" ORDER BY l.created_at DESC, l.land_id DESC LIMIT %s OFFSET %s", arg(filter.Limit), arg(filter.Offset))

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list land records: %w", err)
	}
	defer rows.Close()

	records := []models.LandRecord{}
	for rows.Next() {
		var rec models.LandRecord
		if err := rows.Scan(recordScanTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("failed to scan land record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating land record rows: %w", err)
	}

	return records, nil
}

func (r *landRepository) Delete(ctx context.Context, q database.Querier, landID string) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM land_location WHERE land_id = $1`, landID)
	if err != nil {
		return false, fmt.Errorf("failed to delete land record %s: %w", landID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *landRepository) Exists(ctx context.Context, q database.Querier, landID string) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM land_location WHERE land_id = $1)`, landID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check land record %s: %w", landID, err)
	}
	return exists, nil
}

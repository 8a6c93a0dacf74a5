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

// LandCodeRepository defines data access for the land code inventory.
type LandCodeRepository interface {
	// ExistingCodes returns every code already issued to the town.
	ExistingCodes(ctx context.Context, q database.Querier, region models.Region) (map[string]struct{}, error)

	// InsertCode writes a new Available code.
	// Returns nil, nil when the code already exists anywhere (ON CONFLICT DO NOTHING).
	InsertCode(ctx context.Context, q database.Querier, region models.Region, code string) (*models.LandCode, error)

	// Get retrieves a land code by ID. Returns nil, nil if not found.
	Get(ctx context.Context, q database.Querier, id int64) (*models.LandCode, error)

	// Lock reads a land code with SELECT ... FOR UPDATE. Returns nil, nil if not found.
	Lock(ctx context.Context, q database.Querier, id int64) (*models.LandCode, error)

	// Update writes the full mutable state of code and returns the stored row.
	Update(ctx context.Context, q database.Querier, code *models.LandCode) (*models.LandCode, error)

	// List returns codes matching filter ordered by code.
	List(ctx context.Context, q database.Querier, filter models.LandCodeFilter) ([]models.LandCode, error)

	// Delete removes a land code. Returns false if nothing was deleted.
	Delete(ctx context.Context, q database.Querier, id int64) (bool, error)

	// Count returns the number of codes matching filter.
	Count(ctx context.Context, q database.Querier, filter models.LandCodeFilter) (int64, error)
}

type landCodeRepository struct{}

// NewLandCodeRepository creates a new instance of LandCodeRepository.
func NewLandCodeRepository() LandCodeRepository {
	return &landCodeRepository{}
}

const landCodeColumns = `id, code, state_id, district_id, town_id, status, farmer_name, farmer_phone, village_name, allotted_at, created_at, updated_at`

func scanLandCode(row pgx.Row) (*models.LandCode, error) {
	var c models.LandCode
	err := row.Scan(
		&c.ID, &c.Code, &c.StateID, &c.DistrictID, &c.TownID, &c.Status,
		&c.FarmerName, &c.FarmerPhone, &c.VillageName, &c.AllottedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *landCodeRepository) ExistingCodes(ctx context.Context, q database.Querier, region models.Region) (map[string]struct{}, error) {
	rows, err := q.Query(ctx, `
		SELECT code FROM land_codes
		WHERE state_id = $1 AND district_id = $2 AND town_id = $3`,
		region.StateID, region.DistrictID, region.TownID)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing land codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan land code: %w", err)
		}
		codes[code] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating land code rows: %w", err)
	}

	return codes, nil
}

func (r *landCodeRepository) InsertCode(ctx context.Context, q database.Querier, region models.Region, code string) (*models.LandCode, error) {
	created, err := scanLandCode(q.QueryRow(ctx, `
		INSERT INTO land_codes (code, state_id, district_id, town_id, status)
		VALUES ($1, $2, $3, $4, 'Available')
		ON CONFLICT (code) DO NOTHING
		RETURNING `+landCodeColumns,
		code, region.StateID, region.DistrictID, region.TownID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to insert land code %s: %w", code, err)
	}
	return created, nil
}

func (r *landCodeRepository) Get(ctx context.Context, q database.Querier, id int64) (*models.LandCode, error) {
	code, err := scanLandCode(q.QueryRow(ctx, `SELECT `+landCodeColumns+` FROM land_codes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query land code %d: %w", id, err)
	}
	return code, nil
}

func (r *landCodeRepository) Lock(ctx context.Context, q database.Querier, id int64) (*models.LandCode, error) {
	code, err := scanLandCode(q.QueryRow(ctx, `SELECT `+landCodeColumns+` FROM land_codes WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock land code %d: %w", id, err)
	}
	return code, nil
}

func (r *landCodeRepository) Update(ctx context.Context, q database.Querier, code *models.LandCode) (*models.LandCode, error) {
	updated, err := scanLandCode(q.QueryRow(ctx, `
		UPDATE land_codes
		SET status = $1, farmer_name = $2, farmer_phone = $3, village_name = $4, allotted_at = $5, updated_at = $6
		WHERE id = $7
		RETURNING `+landCodeColumns,
		code.Status, code.FarmerName, code.FarmerPhone, code.VillageName, code.AllottedAt, time.Now().UTC(), code.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update land code %d: %w", code.ID, err)
	}
	return updated, nil
}

// landCodeWhere builds the WHERE clause shared by List and Count.
func landCodeWhere(filter models.LandCodeFilter) (string, []any) {
	var where []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.StateID != "" {
		add("state_id", filter.StateID)
	}
	if filter.DistrictID != "" {
		add("district_id", filter.DistrictID)
	}
	if filter.TownID != "" {
		add("town_id", filter.TownID)
	}
	if filter.Status != nil {
		add("status", string(*filter.Status))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *landCodeRepository) List(ctx context.Context, q database.Querier, filter models.LandCodeFilter) ([]models.LandCode, error) {
	where, args := landCodeWhere(filter)
	rows, err := q.Query(ctx, `SELECT `+landCodeColumns+` FROM land_codes`+where+` ORDER BY code`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list land codes: %w", err)
	}
	defer rows.Close()

	codes := []models.LandCode{}
	for rows.Next() {
		code, err := scanLandCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan land code row: %w", err)
		}
		codes = append(codes, *code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating land code rows: %w", err)
	}

	return codes, nil
}

func (r *landCodeRepository) Delete(ctx context.Context, q database.Querier, id int64) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM land_codes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete land code %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *landCodeRepository) Count(ctx context.Context, q database.Querier, filter models.LandCodeFilter) (int64, error) {
	where, args := landCodeWhere(filter)
	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM land_codes`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count land codes: %w", err)
	}
	return n, nil
}

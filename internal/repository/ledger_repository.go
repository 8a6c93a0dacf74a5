package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// LedgerRepository defines data access for payable ledger entries.
type LedgerRepository interface {
	// Insert appends an entry. When a uniqueness rule already covers the entry
	// (one verified payout per land, one work entry per land and kind, one travel
	// entry per session) nothing is written and the existing row is returned
	// with created set to false.
	Insert(ctx context.Context, q database.Querier, entry models.OpenEntry) (*models.LedgerEntry, bool, error)

	// Exists reports whether an entry of kind with tag exists for subjectID,
	// which is the session ID for travel entries and the land ID otherwise.
	Exists(ctx context.Context, q database.Querier, kind models.LedgerKind, subjectID string, tag models.VerificationTag) (bool, error)

	// Lock reads an entry with SELECT ... FOR UPDATE. Returns nil, nil if not found.
	Lock(ctx context.Context, q database.Querier, id int64) (*models.LedgerEntry, error)

	// Get retrieves an entry by ID. Returns nil, nil if not found.
	Get(ctx context.Context, q database.Querier, id int64) (*models.LedgerEntry, error)

	// UpdateSettlement moves an entry to status, replacing the amount when one is given.
	// Returns nil, nil if not found.
	UpdateSettlement(ctx context.Context, q database.Querier, id int64, status models.LedgerStatus, amount *decimal.Decimal) (*models.LedgerEntry, error)

	// ListByPayee returns a payee's entries newest first, optionally narrowed to one kind.
	ListByPayee(ctx context.Context, q database.Querier, payeeID string, kind *models.LedgerKind) ([]models.LedgerEntry, error)

	// ListByLand returns all entries attached to a land record, oldest first.
	ListByLand(ctx context.Context, q database.Querier, landID string) ([]models.LedgerEntry, error)
}

type ledgerRepository struct{}

// NewLedgerRepository creates a new instance of LedgerRepository.
func NewLedgerRepository() LedgerRepository {
	return &ledgerRepository{}
}

const ledgerColumns = `id, kind, land_id, session_id, payee_id, verification_tag, amount, distance_km, status, created_at, updated_at`

func scanLedgerEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(
		&e.ID, &e.Kind, &e.LandID, &e.SessionID, &e.PayeeID, &e.VerificationTag,
		&e.Amount, &e.DistanceKM, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *ledgerRepository) Insert(ctx context.Context, q database.Querier, entry models.OpenEntry) (*models.LedgerEntry, bool, error) {
	tag := entry.VerificationTag
	if tag == "" {
		tag = models.TagPending
	}

	created, err := scanLedgerEntry(q.QueryRow(ctx, `
		INSERT INTO ledger_entries (kind, land_id, session_id, payee_id, verification_tag, amount, distance_km)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
		RETURNING `+ledgerColumns,
		entry.Kind, nullableText(entry.LandID), nullableText(entry.SessionID), entry.PayeeID, tag,
		entry.Amount, entry.DistanceKM,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to insert %s ledger entry for %s: %w", entry.Kind, entry.SubjectID(), err)
	}

	existing, err := r.findDuplicate(ctx, q, entry.Kind, entry.LandID, entry.SessionID, tag)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("ledger entry for %s conflicted but no existing row was found", entry.SubjectID())
	}
	return existing, false, nil
}

// findDuplicate mirrors the partial unique indexes on ledger_entries.
func (r *ledgerRepository) findDuplicate(ctx context.Context, q database.Querier, kind models.LedgerKind, landID, sessionID string, tag models.VerificationTag) (*models.LedgerEntry, error) {
	var row pgx.Row
	switch kind {
	case models.LedgerTravel:
		row = q.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries
			WHERE kind = 'travel' AND session_id = $1`, sessionID)
	case models.LedgerPhysicalVerification:
		row = q.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries
			WHERE kind = 'physical_verification' AND land_id = $1 AND verification_tag = $2`, landID, tag)
	default:
		row = q.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries
			WHERE kind = $1 AND land_id = $2`, kind, landID)
	}

	entry, err := scanLedgerEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query existing ledger entry: %w", err)
	}
	return entry, nil
}

// subjectColumn is the column that identifies an entry's subject for kind.
func subjectColumn(kind models.LedgerKind) string {
	if kind == models.LedgerTravel {
		return "session_id"
	}
	return "land_id"
}

func (r *ledgerRepository) Exists(ctx context.Context, q database.Querier, kind models.LedgerKind, subjectID string, tag models.VerificationTag) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries
			WHERE kind = $1 AND `+subjectColumn(kind)+` = $2 AND verification_tag = $3
		)`, kind, subjectID, tag,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s ledger entry for %s: %w", kind, subjectID, err)
	}
	return exists, nil
}

func (r *ledgerRepository) Lock(ctx context.Context, q database.Querier, id int64) (*models.LedgerEntry, error) {
	entry, err := scanLedgerEntry(q.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock ledger entry %d: %w", id, err)
	}
	return entry, nil
}

func (r *ledgerRepository) Get(ctx context.Context, q database.Querier, id int64) (*models.LedgerEntry, error) {
	entry, err := scanLedgerEntry(q.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query ledger entry %d: %w", id, err)
	}
	return entry, nil
}

func (r *ledgerRepository) UpdateSettlement(ctx context.Context, q database.Querier, id int64, status models.LedgerStatus, amount *decimal.Decimal) (*models.LedgerEntry, error) {
	entry, err := scanLedgerEntry(q.QueryRow(ctx, `
		UPDATE ledger_entries
		SET status = $1, amount = COALESCE($2::numeric, amount), updated_at = NOW()
		WHERE id = $3
		RETURNING `+ledgerColumns, status, amount, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update ledger entry %d: %w", id, err)
	}
	return entry, nil
}

func (r *ledgerRepository) ListByPayee(ctx context.Context, q database.Querier, payeeID string, kind *models.LedgerKind) ([]models.LedgerEntry, error) {
	sql := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE payee_id = $1`
	args := []any{payeeID}
	if kind != nil {
		sql += ` AND kind = $2`
		args = append(args, *kind)
	}
	sql += ` ORDER BY created_at DESC, id DESC`

	return r.list(ctx, q, sql, args...)
}

func (r *ledgerRepository) ListByLand(ctx context.Context, q database.Querier, landID string) ([]models.LedgerEntry, error) {
	return r.list(ctx, q, `SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE land_id = $1 ORDER BY id`, landID)
}

func (r *ledgerRepository) list(ctx context.Context, q database.Querier, sql string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}

	return entries, nil
}

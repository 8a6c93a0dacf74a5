package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// PurchaseRepository defines data access for buyer purchase requests.
type PurchaseRepository interface {
	// Insert writes a pending request.
	// Returns nil, nil when the buyer already has a request for the land.
	Insert(ctx context.Context, q database.Querier, landID, buyerID, landCode string) (*models.PurchaseRequest, error)

	// FindByLandAndBuyer returns the buyer's request for a land record. Returns nil, nil if none.
	FindByLandAndBuyer(ctx context.Context, q database.Querier, landID, buyerID string) (*models.PurchaseRequest, error)

	// Lock reads a request with SELECT ... FOR UPDATE. Returns nil, nil if not found.
	Lock(ctx context.Context, q database.Querier, id int64) (*models.PurchaseRequest, error)

	// UpdateStatus records a decision and stamps decided_at.
	UpdateStatus(ctx context.Context, q database.Querier, id int64, status models.PurchaseStatus) (*models.PurchaseRequest, error)

	// ListByBuyer returns the buyer's requests with their land records, newest first.
	ListByBuyer(ctx context.Context, q database.Querier, buyerID string) ([]models.PurchaseRequestWithLand, error)

	// GetWithLand returns one request with its land record. Returns nil, nil if not found.
	GetWithLand(ctx context.Context, q database.Querier, id int64) (*models.PurchaseRequestWithLand, error)
}

type purchaseRepository struct{}

// NewPurchaseRepository creates a new instance of PurchaseRepository.
func NewPurchaseRepository() PurchaseRepository {
	return &purchaseRepository{}
}

const purchaseColumns = `id, land_id, buyer_id, land_code, status, created_at, decided_at`

func scanPurchase(row pgx.Row) (*models.PurchaseRequest, error) {
	var p models.PurchaseRequest
	if err := row.Scan(&p.ID, &p.LandID, &p.BuyerID, &p.LandCode, &p.Status, &p.CreatedAt, &p.DecidedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) Insert(ctx context.Context, q database.Querier, landID, buyerID, landCode string) (*models.PurchaseRequest, error) {
	created, err := scanPurchase(q.QueryRow(ctx, `
		INSERT INTO purchase_requests (land_id, buyer_id, land_code, status)
		VALUES ($1, $2, $3, 'pending')
		ON CONFLICT (land_id, buyer_id) DO NOTHING
		RETURNING `+purchaseColumns,
		landID, buyerID, landCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to insert purchase request for %s: %w", landID, err)
	}
	return created, nil
}

func (r *purchaseRepository) FindByLandAndBuyer(ctx context.Context, q database.Querier, landID, buyerID string) (*models.PurchaseRequest, error) {
	req, err := scanPurchase(q.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchase_requests WHERE land_id = $1 AND buyer_id = $2`,
		landID, buyerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query purchase request for %s: %w", landID, err)
	}
	return req, nil
}

func (r *purchaseRepository) Lock(ctx context.Context, q database.Querier, id int64) (*models.PurchaseRequest, error) {
	req, err := scanPurchase(q.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchase_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock purchase request %d: %w", id, err)
	}
	return req, nil
}

func (r *purchaseRepository) UpdateStatus(ctx context.Context, q database.Querier, id int64, status models.PurchaseStatus) (*models.PurchaseRequest, error) {
	req, err := scanPurchase(q.QueryRow(ctx, `
		UPDATE purchase_requests SET status = $1, decided_at = NOW()
		WHERE id = $2
		RETURNING `+purchaseColumns, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update purchase request %d: %w", id, err)
	}
	return req, nil
}

// purchaseWithLandSelect joins each request to its denormalized land record.
const purchaseWithLandSelect = `
	SELECT p.id, p.land_id, p.buyer_id, p.land_code, p.status, p.created_at, p.decided_at, rec.*
	FROM purchase_requests p
	JOIN LATERAL (` + recordSelect + ` WHERE l.land_id = p.land_id) rec ON TRUE`

func scanPurchaseWithLand(row pgx.Row) (*models.PurchaseRequestWithLand, error) {
	var item models.PurchaseRequestWithLand
	p := &item.PurchaseRequest
	targets := append([]any{&p.ID, &p.LandID, &p.BuyerID, &p.LandCode, &p.Status, &p.CreatedAt, &p.DecidedAt},
		recordScanTargets(&item.Land)...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *purchaseRepository) ListByBuyer(ctx context.Context, q database.Querier, buyerID string) ([]models.PurchaseRequestWithLand, error) {
	rows, err := q.Query(ctx, purchaseWithLandSelect+`
		WHERE p.buyer_id = $1
		ORDER BY p.created_at DESC, p.id DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase requests for buyer %s: %w", buyerID, err)
	}
	defer rows.Close()

	requests := []models.PurchaseRequestWithLand{}
	for rows.Next() {
		item, err := scanPurchaseWithLand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase request row: %w", err)
		}
		requests = append(requests, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase request rows: %w", err)
	}

	return requests, nil
}

func (r *purchaseRepository) GetWithLand(ctx context.Context, q database.Querier, id int64) (*models.PurchaseRequestWithLand, error) {
	item, err := scanPurchaseWithLand(q.QueryRow(ctx, purchaseWithLandSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query purchase request %d: %w", id, err)
	}
	return item, nil
}

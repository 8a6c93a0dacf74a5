package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/repository"
)

// PurchaseService defines the interface for buyer purchase intents.
type PurchaseService interface {
	// Request records a buyer's intent to purchase a land record.
	// A second request by the same buyer for the same land returns ErrConflict.
	Request(ctx context.Context, landID, buyerID, landCode string) (*models.PurchaseRequest, error)

	// ListByBuyer returns the buyer's requests with their land records.
	ListByBuyer(ctx context.Context, buyerID string) ([]models.PurchaseRequestWithLand, error)

	// Get returns one request with its land record. A non-empty buyerID limits
	// the lookup to that buyer's requests; another buyer's request is ErrNotFound.
	Get(ctx context.Context, id int64, buyerID string) (*models.PurchaseRequestWithLand, error)

	// Decide approves or rejects a pending request.
	Decide(ctx context.Context, id int64, status models.PurchaseStatus) (*models.PurchaseRequest, error)
}

type purchaseService struct {
	store     Store
	purchases repository.PurchaseRepository
	lands     repository.LandRepository
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewPurchaseService creates a new instance of PurchaseService.
func NewPurchaseService(store Store, purchases repository.PurchaseRepository, lands repository.LandRepository, m *metrics.Metrics, log *logger.Logger) PurchaseService {
	return &purchaseService{store: store, purchases: purchases, lands: lands, metrics: m, log: log.Component("purchases")}
}

func (s *purchaseService) Request(ctx context.Context, landID, buyerID, landCode string) (*models.PurchaseRequest, error) {
	landID = strings.TrimSpace(landID)
	landCode = strings.TrimSpace(landCode)
	if landID == "" {
		return nil, fmt.Errorf("%w: land_id: is required", ErrValidation)
	}
	if landCode == "" {
		return nil, fmt.Errorf("%w: land_code: is required", ErrValidation)
	}
	if buyerID == "" {
		return nil, fmt.Errorf("%w: buyer identity is required", ErrValidation)
	}

	var created *models.PurchaseRequest
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		exists, err := s.lands.Exists(ctx, q, landID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: land record %s", ErrNotFound, landID)
		}

		created, err = s.purchases.Insert(ctx, q, landID, buyerID, landCode)
		if err != nil {
			return err
		}
		if created != nil {
			return nil
		}

		existing, err := s.purchases.FindByLandAndBuyer(ctx, q, landID, buyerID)
		if err != nil {
			return err
		}
		status := models.PurchasePending
		if existing != nil {
			status = existing.Status
		}
		return fmt.Errorf("%w: purchase request already exists with status %s", ErrConflict, status)
	})
	if err != nil {
		s.metrics.IncrementPurchaseRequests(outcomeOf(err))
		return nil, err
	}

	s.metrics.IncrementPurchaseRequests("created")
	s.log.Info("Purchase request created", map[string]interface{}{
		"request_id": created.ID,
		"land_id":    landID,
		"buyer_id":   buyerID,
	})
	return created, nil
}

// outcomeOf labels a failed request for metrics.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *purchaseService) ListByBuyer(ctx context.Context, buyerID string) ([]models.PurchaseRequestWithLand, error) {
	if buyerID == "" {
		return nil, fmt.Errorf("%w: buyer identity is required", ErrValidation)
	}

	requests, err := s.purchases.ListByBuyer(ctx, s.store.Querier(), buyerID)
	if err != nil {
		s.log.Error("Failed to list purchase requests", err, map[string]interface{}{"buyer_id": buyerID})
		return nil, fmt.Errorf("failed to list purchase requests: %w", err)
	}
	return requests, nil
}

func (s *purchaseService) Get(ctx context.Context, id int64, buyerID string) (*models.PurchaseRequestWithLand, error) {
	item, err := s.purchases.GetWithLand(ctx, s.store.Querier(), id)
	if err != nil {
		s.log.Error("Failed to load purchase request", err, map[string]interface{}{"request_id": id})
		return nil, fmt.Errorf("failed to load purchase request: %w", err)
	}
	if item == nil || (buyerID != "" && item.BuyerID != buyerID) {
		return nil, fmt.Errorf("%w: purchase request %d", ErrNotFound, id)
	}
	return item, nil
}

func (s *purchaseService) Decide(ctx context.Context, id int64, status models.PurchaseStatus) (*models.PurchaseRequest, error) {
	if status != models.PurchaseApproved && status != models.PurchaseRejected {
		return nil, fmt.Errorf("%w: status: must be approved or rejected", ErrValidation)
	}

	var decided *models.PurchaseRequest
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		current, err := s.purchases.Lock(ctx, q, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: purchase request %d", ErrNotFound, id)
		}
		if current.Status != models.PurchasePending {
			return fmt.Errorf("%w: purchase request is already %s", ErrConflict, current.Status)
		}

		decided, err = s.purchases.UpdateStatus(ctx, q, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Purchase request decided", map[string]interface{}{
		"request_id": id,
		"status":     status,
	})
	return decided, nil
}

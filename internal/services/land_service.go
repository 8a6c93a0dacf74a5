package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/landbroker/api/internal/cache"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/repository"
	"github.com/stwalsh4118/landbroker/api/internal/routing"
)

// LandService defines the interface for the land record aggregate.
type LandService interface {
	// CreateRecord routes bag into all six sections, inserts them and opens the
	// creation_work and month_end_work ledger entries in one transaction.
	// state and district are required. Returns the new land_id.
	CreateRecord(ctx context.Context, actor models.Actor, bag routing.FieldBag, files routing.FileRefs) (string, error)

	// UpdateRecord applies the sections present in bag under the lifecycle rules
	// for mode. Returns ErrNotFound, ErrConflict or ErrValidation.
	UpdateRecord(ctx context.Context, landID string, bag routing.FieldBag, files routing.FileRefs, actor models.Actor, mode models.Mode) error

	// GetRecord returns the assembled record, serving from the cache when possible.
	GetRecord(ctx context.Context, landID string) (*models.LandRecord, error)

	// ListRecords returns records matching filter, newest first.
	ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.LandRecord, error)

	// DeleteRecord removes a record and everything that references it.
	DeleteRecord(ctx context.Context, landID string) error
}

type landService struct {
	store    Store
	repo     repository.LandRepository
	ledger   LedgerService
	workflow *Workflow
	cache    cache.RecordCache
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewLandService creates a new instance of LandService.
// A nil cache disables read-through caching.
func NewLandService(
	store Store,
	repo repository.LandRepository,
	ledger LedgerService,
	workflow *Workflow,
	recordCache cache.RecordCache,
	m *metrics.Metrics,
	log *logger.Logger,
) LandService {
	if recordCache == nil {
		recordCache = cache.NoopRecordCache{}
	}
	return &landService{
		store:    store,
		repo:     repo,
		ledger:   ledger,
		workflow: workflow,
		cache:    recordCache,
		metrics:  m,
		log:      log.Component("land_records"),
	}
}

// routeInput converts routing failures into validation errors naming the field.
func routeInput(bag routing.FieldBag, files routing.FileRefs, mode models.Mode, actor models.Actor) (models.RecordPatch, error) {
	patch, err := routing.Build(bag, files, mode, actor)
	if err != nil {
		if errors.Is(err, routing.ErrInvalidField) {
			return models.RecordPatch{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return models.RecordPatch{}, err
	}
	return patch, nil
}

func (s *landService) CreateRecord(ctx context.Context, actor models.Actor, bag routing.FieldBag, files routing.FileRefs) (string, error) {
	if actor.ID == "" {
		return "", fmt.Errorf("%w: actor identity is required", ErrValidation)
	}

	patch, err := routeInput(bag, files, models.ModeNormal, actor)
	if err != nil {
		return "", err
	}
	if patch.Location.State == nil {
		return "", fmt.Errorf("%w: state: is required", ErrValidation)
	}
	if patch.Location.District == nil {
		return "", fmt.Errorf("%w: district: is required", ErrValidation)
	}

	start := time.Now()
	var landID string
	err = s.store.WithTx(ctx, func(q database.Querier) error {
		id, err := s.repo.NextLandID(ctx, q)
		if err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, q, id, patch); err != nil {
			return err
		}

		for _, kind := range []models.LedgerKind{models.LedgerCreationWork, models.LedgerMonthEndWork} {
			if _, _, err := s.ledger.Open(ctx, q, models.OpenEntry{
				Kind:            kind,
				LandID:          id,
				PayeeID:         actor.ID,
				VerificationTag: models.TagPending,
				Amount:          decimal.Zero,
			}); err != nil {
				return err
			}
		}

		landID = id
		return nil
	})
	if err != nil {
		s.log.Error("Failed to create land record", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		return "", err
	}

	s.metrics.ObserveRecordWrite(start)
	s.metrics.IncrementRecordsCreated()
	s.log.Info("Land record created", map[string]interface{}{
		"land_id":  landID,
		"actor_id": actor.ID,
	})

	return landID, nil
}

func (s *landService) UpdateRecord(ctx context.Context, landID string, bag routing.FieldBag, files routing.FileRefs, actor models.Actor, mode models.Mode) error {
	if mode != models.ModeNormal && mode != models.ModeVerification {
		return fmt.Errorf("%w: unknown update mode %q", ErrValidation, mode)
	}

	patch, err := routeInput(bag, files, mode, actor)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	start := time.Now()
	var (
		transition Transition
		wrote      bool
	)
	err = s.store.WithTx(ctx, func(q database.Querier) error {
		current, err := s.repo.LockLocation(ctx, q, landID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: land record %s", ErrNotFound, landID)
		}

		transition, err = s.workflow.Check(current, &patch, mode)
		if err != nil {
			return err
		}

		// A repeated verified decision with nothing else to write is a no-op
		if patch.IsEmpty() {
			return nil
		}

		if err := s.repo.ApplyPatch(ctx, q, landID, patch); err != nil {
			return err
		}
		wrote = true

		if mode == models.ModeVerification && transition.EnterVerified {
			return s.workflow.OnVerified(ctx, q, landID, actor)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrValidation) {
			s.log.Error("Failed to update land record", err, map[string]interface{}{
				"land_id":  landID,
				"actor_id": actor.ID,
				"mode":     mode,
			})
		}
		return err
	}

	if !wrote {
		s.log.Debug("Land record update was a no-op", map[string]interface{}{"land_id": landID})
		return nil
	}

	s.invalidate(ctx, landID)
	s.workflow.Committed(landID, transition)
	s.metrics.ObserveRecordWrite(start)
	s.metrics.IncrementRecordsUpdated(string(mode))
	s.log.Info("Land record updated", map[string]interface{}{
		"land_id":  landID,
		"actor_id": actor.ID,
		"mode":     mode,
	})

	return nil
}

func (s *landService) GetRecord(ctx context.Context, landID string) (*models.LandRecord, error) {
	// fill stays false when the cache is unreachable
	fill := false
	var generation int64
	if cached, ok, err := s.cache.Get(ctx, landID); err != nil {
		s.cacheFailed("read", landID, err)
		s.metrics.IncrementCacheLookup("error")
	} else if ok {
		s.metrics.IncrementCacheLookup("hit")
		return cached, nil
	} else {
		s.metrics.IncrementCacheLookup("miss")
		// Taken before the storage read so a write committed in between discards the fill
		if generation, err = s.cache.Generation(ctx, landID); err != nil {
			s.cacheFailed("generation read", landID, err)
		} else {
			fill = true
		}
	}

	record, err := s.repo.Get(ctx, s.store.Querier(), landID)
	if err != nil {
		s.log.Error("Failed to query land record", err, map[string]interface{}{"land_id": landID})
		return nil, fmt.Errorf("failed to query land record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: land record %s", ErrNotFound, landID)
	}

	if fill {
		stored, err := s.cache.Fill(ctx, record, generation)
		switch {
		case err != nil:
			s.cacheFailed("write", landID, err)
		case !stored:
			s.log.Debug("Record changed while loading, cache fill skipped", map[string]interface{}{
				"land_id": landID,
			})
		}
	}

	return record, nil
}

func (s *landService) cacheFailed(op, landID string, err error) {
	s.log.Warn("Record cache "+op+" failed", map[string]interface{}{
		"land_id": landID,
		"error":   err.Error(),
	})
}

func (s *landService) ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.LandRecord, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be draft or published", ErrValidation)
	}
	if filter.Verification != nil && !filter.Verification.Valid() {
		return nil, fmt.Errorf("%w: verification must be pending, verified or rejected", ErrValidation)
	}
	filter.Normalize()

	records, err := s.repo.List(ctx, s.store.Querier(), filter)
	if err != nil {
		s.log.Error("Failed to list land records", err, nil)
		return nil, fmt.Errorf("failed to list land records: %w", err)
	}

	s.log.Debug("Land records listed", map[string]interface{}{
		"count":  len(records),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
	return records, nil
}

func (s *landService) DeleteRecord(ctx context.Context, landID string) error {
	deleted, err := s.repo.Delete(ctx, s.store.Querier(), landID)
	if err != nil {
		s.log.Error("Failed to delete land record", err, map[string]interface{}{"land_id": landID})
		return fmt.Errorf("failed to delete land record: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: land record %s", ErrNotFound, landID)
	}

	s.invalidate(ctx, landID)
	s.log.Info("Land record deleted", map[string]interface{}{"land_id": landID})
	return nil
}

// invalidate drops a committed record from the cache. Failures only log:
// entries expire on their TTL.
func (s *landService) invalidate(ctx context.Context, landID string) {
	if err := s.cache.Invalidate(ctx, landID); err != nil {
		s.log.Warn("Record cache invalidation failed", map[string]interface{}{
			"land_id": landID,
			"error":   err.Error(),
		})
	}
}

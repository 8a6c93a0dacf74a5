package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/repository"
)

// LedgerService defines the interface for payable ledger operations.
type LedgerService interface {
	// Open appends an entry on q, which is normally the caller's transaction.
	// If a uniqueness rule already covers the entry the existing row is
	// returned with created set to false.
	Open(ctx context.Context, q database.Querier, entry models.OpenEntry) (*models.LedgerEntry, bool, error)

	// Exists reports whether an entry of kind with tag exists for subjectID.
	Exists(ctx context.Context, q database.Querier, kind models.LedgerKind, subjectID string, tag models.VerificationTag) (bool, error)

	// Settle moves an entry forward (pending -> approved | paid, approved -> paid),
	// optionally fixing its amount.
	// Returns ErrNotFound for an unknown id and ErrConflict for a disallowed move.
	Settle(ctx context.Context, id int64, status models.LedgerStatus, amount *decimal.Decimal) (*models.LedgerEntry, error)

	// OpenTravel records travel for a completed field session. Repeating the
	// call for the same session returns the original entry.
	OpenTravel(ctx context.Context, sessionID, payeeID string, distanceKM decimal.Decimal) (*models.LedgerEntry, bool, error)

	// ListByPayee returns a payee's entries, optionally narrowed to one kind.
	ListByPayee(ctx context.Context, payeeID string, kind *models.LedgerKind) ([]models.LedgerEntry, error)

	// ListByLand returns the entries attached to a land record.
	ListByLand(ctx context.Context, landID string) ([]models.LedgerEntry, error)
}

type ledgerService struct {
	store   Store
	repo    repository.LedgerRepository
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(store Store, repo repository.LedgerRepository, m *metrics.Metrics, log *logger.Logger) LedgerService {
	return &ledgerService{store: store, repo: repo, metrics: m, log: log.Component("ledger")}
}

func validateOpenEntry(entry models.OpenEntry) error {
	if !entry.Kind.Valid() {
		return fmt.Errorf("%w: unknown ledger kind %q", ErrValidation, entry.Kind)
	}
	if entry.PayeeID == "" {
		return fmt.Errorf("%w: payee_id is required", ErrValidation)
	}
	if (entry.LandID == "") == (entry.SessionID == "") {
		return fmt.Errorf("%w: exactly one of land_id and session_id is required", ErrValidation)
	}
	if entry.Kind == models.LedgerTravel && entry.SessionID == "" {
		return fmt.Errorf("%w: travel entries require a session_id", ErrValidation)
	}
	if entry.Kind != models.LedgerTravel && entry.LandID == "" {
		return fmt.Errorf("%w: %s entries require a land_id", ErrValidation, entry.Kind)
	}
	if entry.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if entry.DistanceKM != nil && entry.DistanceKM.IsNegative() {
		return fmt.Errorf("%w: distance_km must not be negative", ErrValidation)
	}
	return nil
}

func (s *ledgerService) Open(ctx context.Context, q database.Querier, entry models.OpenEntry) (*models.LedgerEntry, bool, error) {
	if err := validateOpenEntry(entry); err != nil {
		return nil, false, err
	}

	opened, created, err := s.repo.Insert(ctx, q, entry)
	if err != nil {
		s.log.Error("Failed to open ledger entry", err, map[string]interface{}{
			"kind":    entry.Kind,
			"subject": entry.SubjectID(),
		})
		return nil, false, fmt.Errorf("failed to open ledger entry: %w", err)
	}

	if created {
		s.metrics.IncrementLedgerOpened(string(entry.Kind))
		s.log.Info("Ledger entry opened", map[string]interface{}{
			"entry_id": opened.ID,
			"kind":     entry.Kind,
			"subject":  entry.SubjectID(),
			"payee_id": entry.PayeeID,
		})
	} else {
		s.log.Debug("Ledger entry already present", map[string]interface{}{
			"entry_id": opened.ID,
			"kind":     entry.Kind,
			"subject":  entry.SubjectID(),
		})
	}

	return opened, created, nil
}

func (s *ledgerService) Exists(ctx context.Context, q database.Querier, kind models.LedgerKind, subjectID string, tag models.VerificationTag) (bool, error) {
	exists, err := s.repo.Exists(ctx, q, kind, subjectID, tag)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry: %w", err)
	}
	return exists, nil
}

func (s *ledgerService) Settle(ctx context.Context, id int64, status models.LedgerStatus, amount *decimal.Decimal) (*models.LedgerEntry, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be pending, approved or paid", ErrValidation)
	}
	if amount != nil && amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	var settled *models.LedgerEntry
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		current, err := s.repo.Lock(ctx, q, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: ledger entry %d", ErrNotFound, id)
		}
		if !current.Status.CanSettleTo(status) {
			return fmt.Errorf("%w: ledger entry is already %s", ErrConflict, current.Status)
		}

		settled, err = s.repo.UpdateSettlement(ctx, q, id, status, amount)
		if err != nil {
			return err
		}
		if settled == nil {
			return fmt.Errorf("%w: ledger entry %d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Ledger entry settled", map[string]interface{}{
		"entry_id": id,
		"status":   status,
		"amount":   settled.Amount.StringFixed(2),
	})
	return settled, nil
}

func (s *ledgerService) OpenTravel(ctx context.Context, sessionID, payeeID string, distanceKM decimal.Decimal) (*models.LedgerEntry, bool, error) {
	entry := models.OpenEntry{
		Kind:            models.LedgerTravel,
		SessionID:       sessionID,
		PayeeID:         payeeID,
		VerificationTag: models.TagPending,
		Amount:          decimal.Zero,
		DistanceKM:      &distanceKM,
	}

	var (
		opened  *models.LedgerEntry
		created bool
	)
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		var err error
		opened, created, err = s.Open(ctx, q, entry)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return opened, created, nil
}

func (s *ledgerService) ListByPayee(ctx context.Context, payeeID string, kind *models.LedgerKind) ([]models.LedgerEntry, error) {
	if payeeID == "" {
		return nil, fmt.Errorf("%w: payee_id is required", ErrValidation)
	}
	if kind != nil && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown ledger kind %q", ErrValidation, *kind)
	}

	entries, err := s.repo.ListByPayee(ctx, s.store.Querier(), payeeID, kind)
	if err != nil {
		s.log.Error("Failed to list ledger entries", err, map[string]interface{}{"payee_id": payeeID})
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

func (s *ledgerService) ListByLand(ctx context.Context, landID string) ([]models.LedgerEntry, error) {
	entries, err := s.repo.ListByLand(ctx, s.store.Querier(), landID)
	if err != nil {
		s.log.Error("Failed to list ledger entries", err, map[string]interface{}{"land_id": landID})
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/repository"
	"github.com/stwalsh4118/landbroker/api/internal/routing"
)

// Transition is the outcome of checking a patch against the record lifecycle.
type Transition struct {
	// From and To are the verification states before and after the write.
	From models.VerificationState
	To   models.VerificationState
	// EnterVerified is set only when the record moves into verified now.
	EnterVerified bool
}

// Changed reports whether the verification state moves.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Workflow owns the status/verification state machine and its ledger side effect.
type Workflow struct {
	lands   repository.LandRepository
	ledger  LedgerService
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewWorkflow creates the verification workflow.
func NewWorkflow(lands repository.LandRepository, ledger LedgerService, m *metrics.Metrics, log *logger.Logger) *Workflow {
	return &Workflow{
		lands:   lands,
		ledger:  ledger,
		metrics: m,
		log:     log.Component("verification"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Check validates patch against the record's current state and normalizes it
// in place:
//   - an owner resubmitting a rejected record (status=published) resets
//     verification to pending and clears remarks
//   - repeating verified on a verified record drops the verification field
//
// It returns ErrConflict when the record is not editable in mode and
// ErrValidation for a transition the verifier may not request.
func (w *Workflow) Check(current *models.LocationSection, patch *models.RecordPatch, mode models.Mode) (Transition, error) {
	t := Transition{From: current.Verification, To: current.Verification}

	if mode != models.ModeVerification {
		if current.Status != models.StatusDraft && current.Verification != models.VerificationRejected {
			return t, fmt.Errorf("%w: record is %s and %s", ErrConflict, current.Status, current.Verification)
		}
		if current.Verification == models.VerificationRejected &&
			patch.Location.Status != nil && *patch.Location.Status == models.StatusPublished {
			pending := models.VerificationPending
			cleared := ""
			patch.Location.Verification = &pending
			patch.Location.Remarks = &cleared
			t.To = pending
		}
		return t, nil
	}

	if current.Status != models.StatusPublished {
		return t, fmt.Errorf("%w: record is %s", ErrConflict, current.Status)
	}

	target := patch.Location.Verification
	if target == nil {
		return t, nil
	}

	switch *target {
	case models.VerificationPending:
		return t, fmt.Errorf("%w: verification: a verifier may not set pending", ErrValidation)

	case models.VerificationVerified:
		switch current.Verification {
		case models.VerificationVerified:
			patch.Location.Verification = nil
			return t, nil
		case models.VerificationRejected:
			return t, fmt.Errorf("%w: record is rejected and must be resubmitted", ErrConflict)
		}
		t.To = models.VerificationVerified
		t.EnterVerified = true

	case models.VerificationRejected:
		if patch.Location.Remarks == nil || strings.TrimSpace(*patch.Location.Remarks) == "" {
			return t, fmt.Errorf("%w: remarks: required when rejecting", ErrValidation)
		}
		if current.Verification == models.VerificationVerified {
			return t, fmt.Errorf("%w: record is already verified", ErrConflict)
		}
		t.To = models.VerificationRejected
	}

	return t, nil
}

// OnVerified runs inside the update transaction when a record enters verified.
// It stamps the verifier and opens the physical verification payout at most
// once. Admin actors never accrue a payout.
func (w *Workflow) OnVerified(ctx context.Context, q database.Querier, landID string, actor models.Actor) error {
	if err := w.lands.StampVerified(ctx, q, landID, actor.ID, w.now()); err != nil {
		return err
	}

	if actor.IsAdmin() {
		w.log.Info("Verification by admin, no payout opened", map[string]interface{}{
			"land_id":  landID,
			"actor_id": actor.ID,
		})
		return nil
	}

	exists, err := w.ledger.Exists(ctx, q, models.LedgerPhysicalVerification, landID, models.TagVerified)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, _, err = w.ledger.Open(ctx, q, models.OpenEntry{
		Kind:            models.LedgerPhysicalVerification,
		LandID:          landID,
		PayeeID:         actor.ID,
		VerificationTag: models.TagVerified,
		Amount:          decimal.Zero,
	})
	return err
}

// Committed records metrics for a transition once its transaction has committed.
func (w *Workflow) Committed(landID string, t Transition) {
	if !t.Changed() {
		return
	}
	w.metrics.IncrementVerification(string(t.To))
	w.log.Info("Verification state changed", map[string]interface{}{
		"land_id": landID,
		"from":    t.From,
		"to":      t.To,
	})
}

// VerificationService is the dedicated entry point for verifier decisions.
type VerificationService interface {
	// TransitionVerification sets the record's verification state, with remarks
	// when rejecting. It runs through the aggregate store in verification mode.
	TransitionVerification(ctx context.Context, landID string, state models.VerificationState, remarks string, actor models.Actor) error
}

type verificationService struct {
	lands LandService
}

// NewVerificationService creates a new instance of VerificationService.
func NewVerificationService(lands LandService) VerificationService {
	return &verificationService{lands: lands}
}

func (s *verificationService) TransitionVerification(ctx context.Context, landID string, state models.VerificationState, remarks string, actor models.Actor) error {
	if !state.Valid() {
		return fmt.Errorf("%w: verification must be pending, verified or rejected", ErrValidation)
	}

	bag := routing.FieldBag{}
	bag.Set("verification", string(state))
	if remarks = strings.TrimSpace(remarks); remarks != "" {
		bag.Set("remarks", remarks)
	}

	return s.lands.UpdateRecord(ctx, landID, bag, routing.FileRefs{}, actor, models.ModeVerification)
}

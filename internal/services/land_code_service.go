package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Land code generation limits
const (
	MinGenerateCount = 1
	MaxGenerateCount = 1000

	// maxGenerateConflicts bounds how many taken numbers a batch may skip
	// after the town's existing codes were loaded.
	maxGenerateConflicts = 1000
)

// LandCodeService defines the interface for the land code inventory.
type LandCodeService interface {
	// Generate allocates count new codes <prefix>@<NN> for the region.
	// Numbers already used are skipped; the whole batch is one transaction.
	Generate(ctx context.Context, region models.Region, prefix string, count int) ([]models.LandCode, error)

	// Assign updates a code. Requesting Assigned on a code that is not
	// Available returns ErrConflict.
	Assign(ctx context.Context, id int64, in models.AssignInput) (*models.LandCode, error)

	// BulkAssign applies several assignments in one transaction. Items that are
	// missing or conflict are reported per item and skipped.
	BulkAssign(ctx context.Context, items []models.AssignInput) ([]models.BulkAssignResult, error)

	Get(ctx context.Context, id int64) (*models.LandCode, error)
	List(ctx context.Context, filter models.LandCodeFilter) ([]models.LandCode, error)
	Delete(ctx context.Context, id int64) error

	// Stats returns per-status counts and percentages for filter.
	Stats(ctx context.Context, filter models.LandCodeFilter) (*models.LandCodeStats, error)
}

type landCodeService struct {
	store   Store
	repo    repository.LandCodeRepository
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewLandCodeService creates a new instance of LandCodeService.
func NewLandCodeService(store Store, repo repository.LandCodeRepository, m *metrics.Metrics, log *logger.Logger) LandCodeService {
	return &landCodeService{
		store:   store,
		repo:    repo,
		metrics: m,
		log:     log.Component("land_codes"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FormatLandCode renders a code number, padded to at least two digits.
func FormatLandCode(prefix string, n int) string {
	return fmt.Sprintf("%s@%02d", prefix, n)
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: prefix: is required", ErrValidation)
	}
	for _, r := range prefix {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("%w: prefix: must contain only letters and digits", ErrValidation)
		}
	}
	return nil
}

func (s *landCodeService) Generate(ctx context.Context, region models.Region, prefix string, count int) ([]models.LandCode, error) {
	region.StateID = strings.TrimSpace(region.StateID)
	region.DistrictID = strings.TrimSpace(region.DistrictID)
	region.TownID = strings.TrimSpace(region.TownID)
	prefix = strings.TrimSpace(prefix)

	if region.StateID == "" || region.DistrictID == "" || region.TownID == "" {
		return nil, fmt.Errorf("%w: state_id, district_id and town_id are required", ErrValidation)
	}
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	if count < MinGenerateCount || count > MaxGenerateCount {
		return nil, fmt.Errorf("%w: count: must be between %d and %d, got %d",
			ErrValidation, MinGenerateCount, MaxGenerateCount, count)
	}

	s.log.Info("Generating land codes", map[string]interface{}{
		"prefix":  prefix,
		"count":   count,
		"town_id": region.TownID,
	})

	var generated []models.LandCode
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		used, err := s.repo.ExistingCodes(ctx, q, region)
		if err != nil {
			return err
		}

		generated = make([]models.LandCode, 0, count)
		conflicts := 0
		for n := 1; len(generated) < count; n++ {
			code := FormatLandCode(prefix, n)
			if _, taken := used[code]; taken {
				continue
			}

			created, err := s.repo.InsertCode(ctx, q, region, code)
			if err != nil {
				return err
			}
			if created == nil {
				// Taken by a concurrent writer or by another town
				used[code] = struct{}{}
				conflicts++
				s.metrics.IncrementLandCodeRetries()
				if conflicts > maxGenerateConflicts {
					return fmt.Errorf("%w: too many taken codes for prefix %s", ErrConflict, prefix)
				}
				continue
			}

			used[code] = struct{}{}
			generated = append(generated, *created)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrConflict) {
			s.log.Error("Failed to generate land codes", err, map[string]interface{}{
				"prefix": prefix,
				"count":  count,
			})
		}
		return nil, err
	}

	s.metrics.AddLandCodesGenerated(len(generated))
	s.log.Info("Land codes generated", map[string]interface{}{
		"prefix": prefix,
		"count":  len(generated),
		"first":  generated[0].Code,
		"last":   generated[len(generated)-1].Code,
	})

	return generated, nil
}

// assignLocked applies in to a locked code row inside q's transaction.
func (s *landCodeService) assignLocked(ctx context.Context, q database.Querier, in models.AssignInput) (*models.LandCode, error) {
	if in.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: status: must be Available or Assigned", ErrValidation)
	}

	code, err := s.repo.Lock(ctx, q, in.ID)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, fmt.Errorf("%w: land code %d", ErrNotFound, in.ID)
	}

	if in.Status != nil {
		switch *in.Status {
		case models.LandCodeAssigned:
			if code.Status != models.LandCodeAvailable {
				return nil, fmt.Errorf("%w: land code is already %s", ErrConflict, code.Status)
			}
			now := s.now()
			code.Status = models.LandCodeAssigned
			code.AllottedAt = &now
		case models.LandCodeAvailable:
			code.Status = models.LandCodeAvailable
			code.AllottedAt = nil
		}
	}
	if in.FarmerName != nil {
		code.FarmerName = in.FarmerName
	}
	if in.FarmerPhone != nil {
		code.FarmerPhone = in.FarmerPhone
	}
	if in.VillageName != nil {
		code.VillageName = in.VillageName
	}

	updated, err := s.repo.Update(ctx, q, code)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: land code %d", ErrNotFound, in.ID)
	}
	return updated, nil
}

func (s *landCodeService) Assign(ctx context.Context, id int64, in models.AssignInput) (*models.LandCode, error) {
	in.ID = id

	var updated *models.LandCode
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		var err error
		updated, err = s.assignLocked(ctx, q, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Land code updated", map[string]interface{}{
		"id":     id,
		"code":   updated.Code,
		"status": updated.Status,
	})
	return updated, nil
}

func isItemError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation)
}

func (s *landCodeService) BulkAssign(ctx context.Context, items []models.AssignInput) ([]models.BulkAssignResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	var results []models.BulkAssignResult
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		results = make([]models.BulkAssignResult, 0, len(items))
		for _, item := range items {
			updated, err := s.assignLocked(ctx, q, item)
			if err != nil {
				if !isItemError(err) {
					return err
				}
				results = append(results, models.BulkAssignResult{ID: item.ID, Error: err.Error()})
				continue
			}
			results = append(results, models.BulkAssignResult{ID: item.ID, LandCode: updated})
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to bulk assign land codes", err, map[string]interface{}{"items": len(items)})
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	s.log.Info("Land codes bulk assigned", map[string]interface{}{
		"items":  len(items),
		"failed": failed,
	})
	return results, nil
}

func (s *landCodeService) Get(ctx context.Context, id int64) (*models.LandCode, error) {
	code, err := s.repo.Get(ctx, s.store.Querier(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query land code: %w", err)
	}
	if code == nil {
		return nil, fmt.Errorf("%w: land code %d", ErrNotFound, id)
	}
	return code, nil
}

func (s *landCodeService) List(ctx context.Context, filter models.LandCodeFilter) ([]models.LandCode, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: status: must be Available or Assigned", ErrValidation)
	}

	codes, err := s.repo.List(ctx, s.store.Querier(), filter)
	if err != nil {
		s.log.Error("Failed to list land codes", err, nil)
		return nil, fmt.Errorf("failed to list land codes: %w", err)
	}
	return codes, nil
}

func (s *landCodeService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, s.store.Querier(), id)
	if err != nil {
		return fmt.Errorf("failed to delete land code: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: land code %d", ErrNotFound, id)
	}

	s.log.Info("Land code deleted", map[string]interface{}{"id": id})
	return nil
}

var landCodeStatuses = []models.LandCodeStatus{models.LandCodeAvailable, models.LandCodeAssigned}

func (s *landCodeService) Stats(ctx context.Context, filter models.LandCodeFilter) (*models.LandCodeStats, error) {
	filter.Status = nil
	q := s.store.Querier()

	var total int64
	counts := make([]int64, len(landCodeStatuses))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx, q, filter)
		total = n
		return err
	})
	for i, status := range landCodeStatuses {
		g.Go(func() error {
			f := filter
			st := status
			f.Status = &st
			n, err := s.repo.Count(gctx, q, f)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to compute land code stats", err, nil)
		return nil, fmt.Errorf("failed to compute land code stats: %w", err)
	}

	stats := &models.LandCodeStats{Total: total, ByStatus: make([]models.StatusCount, len(landCodeStatuses))}
	for i, status := range landCodeStatuses {
		stats.ByStatus[i] = models.StatusCount{
			Status:     status,
			Count:      counts[i],
			Percentage: percentage(counts[i], total),
		}
	}
	return stats, nil
}

// percentage returns part/total as a percentage rounded to two places.
func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}

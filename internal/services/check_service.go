package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adyen/cartcheck/internal/cart"
	"github.com/adyen/cartcheck/internal/models"
)

// CheckRepository defines the interface for run history persistence
type CheckRepository interface {
	CreateCheck(ctx context.Context, run *models.CheckRun) error
	UpdateCheck(ctx context.Context, run *models.CheckRun) error
	GetCheckByReference(ctx context.Context, reference string) (*models.CheckRun, error)
	ListRecentChecks(ctx context.Context, limit int) ([]*models.CheckRun, error)
}

// RunRecorder observes finished runs by status
type RunRecorder interface {
	ObserveRun(status string)
}

// ErrHistoryDisabled is returned by history queries when no repository is configured
var ErrHistoryDisabled = errors.New("run history is disabled")

// CheckService tracks verification runs
type CheckService interface {
	Start(ctx context.Context, baseURL, scenario string) (*models.CheckRun, error)
	Finish(ctx context.Context, run *models.CheckRun, snap cart.Snapshot, runErr error) error
	Recent(ctx context.Context, limit int) ([]*models.CheckRun, error)
}

// CheckServiceImpl implements CheckService. A nil repository keeps runs in memory only.
type CheckServiceImpl struct {
	repo     CheckRepository
	recorder RunRecorder
	logger   zerolog.Logger
}

// NewCheckService creates a new check service
func NewCheckService(repo CheckRepository, recorder RunRecorder, logger zerolog.Logger) CheckService {
	return &CheckServiceImpl{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
	}
}

// Start creates a pending run and persists it
func (s *CheckServiceImpl) Start(ctx context.Context, baseURL, scenario string) (*models.CheckRun, error) {
	run, err := models.NewCheckRun(baseURL, scenario)
	if err != nil {
		return nil, fmt.Errorf("invalid check run: %w", err)
	}

	if s.repo != nil {
		if err := s.repo.CreateCheck(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to create check run: %w", err)
		}
	}

	s.logger.Debug().Str("reference", run.Reference).Str("scenario", scenario).Msg("check run started")
	return run, nil
}

// Finish classifies runErr, moves the run to its final status and persists it.
// An invariant violation fails the run; any other error marks it errored.
func (s *CheckServiceImpl) Finish(ctx context.Context, run *models.CheckRun, snap cart.Snapshot, runErr error) error {
	var invariant *cart.InvariantError
	var err error
	switch {
	case runErr == nil:
		err = run.Pass(len(snap.Items), int64(snap.Total), int64(snap.Sum()))
	case errors.As(runErr, &invariant):
		err = run.Fail(invariant.Items, int64(invariant.Total), int64(invariant.Sum), runErr.Error())
	default:
		err = run.Errored(runErr.Error())
	}
	if err != nil {
		return fmt.Errorf("failed to finish check run: %w", err)
	}

	if s.recorder != nil {
		s.recorder.ObserveRun(string(run.Status))
	}

	if s.repo != nil {
		if err := s.repo.UpdateCheck(ctx, run); err != nil {
			return fmt.Errorf("failed to update check run: %w", err)
		}
	}

	s.logger.Info().
		Str("reference", run.Reference).
		Str("status", string(run.Status)).
		Int64("total", run.Total).
		Int64("sum", run.Sum).
		Dur("elapsed", run.Duration()).
		Msg("check run finished")
	return nil
}

// Recent lists the latest persisted runs
func (s *CheckServiceImpl) Recent(ctx context.Context, limit int) ([]*models.CheckRun, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.repo.ListRecentChecks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}
	return runs, nil
}

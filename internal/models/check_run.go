package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CheckStatus represents valid check run states
type CheckStatus string

// Check run statuses
const (
	CheckStatusPending CheckStatus = "pending"
	CheckStatusPassed  CheckStatus = "passed"
	CheckStatusFailed  CheckStatus = "failed"
	CheckStatusErrored CheckStatus = "errored"
)

// CheckRun records one verification of a storefront cart
type CheckRun struct {
	ID        string
	Reference string
	BaseURL   string
	Scenario  string
	Status    CheckStatus
	Items     int
	Total     int64
	Sum       int64
	Detail    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain errors
var (
	ErrInvalidBaseURL          = errors.New("base URL cannot be empty")
	ErrInvalidScenario         = errors.New("scenario name cannot be empty")
	ErrInvalidStatusTransition = errors.New("invalid check status transition")
	ErrMissingDetail           = errors.New("a failed or errored run needs a detail message")
)

// NewCheckRun creates a pending run against baseURL
func NewCheckRun(baseURL, scenario string) (*CheckRun, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	if scenario == "" {
		return nil, ErrInvalidScenario
	}

	id := uuid.New().String()
	now := time.Now()
	return &CheckRun{
		ID:        id,
		Reference: fmt.Sprintf("CHECK-%d-%s", now.Unix(), id[:8]),
		BaseURL:   baseURL,
		Scenario:  scenario,
		Status:    CheckStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Pass marks the run as passed with the observed figures
func (r *CheckRun) Pass(items int, total, sum int64) error {
	if err := r.finish(CheckStatusPassed); err != nil {
		return err
	}
	r.Items, r.Total, r.Sum = items, total, sum
	return nil
}

// Fail marks the run as failed: the cart was observed but broke an invariant
func (r *CheckRun) Fail(items int, total, sum int64, detail string) error {
	if detail == "" {
		return ErrMissingDetail
	}
	if err := r.finish(CheckStatusFailed); err != nil {
		return err
	}
	r.Items, r.Total, r.Sum, r.Detail = items, total, sum, detail
	return nil
}

// Errored marks the run as errored: the cart could not be observed
func (r *CheckRun) Errored(detail string) error {
	if detail == "" {
		return ErrMissingDetail
	}
	if err := r.finish(CheckStatusErrored); err != nil {
		return err
	}
	r.Detail = detail
	return nil
}

func (r *CheckRun) finish(status CheckStatus) error {
	if r.Status != CheckStatusPending {
		return fmt.Errorf("%w: cannot move run from %s to %s", ErrInvalidStatusTransition, r.Status, status)
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

// IsPending returns true if the run has not finished
func (r *CheckRun) IsPending() bool {
	return r.Status == CheckStatusPending
}

// Passed returns true if the run finished without findings
func (r *CheckRun) Passed() bool {
	return r.Status == CheckStatusPassed
}

// Duration is the time between creation and the last status change
func (r *CheckRun) Duration() time.Duration {
	return r.UpdatedAt.Sub(r.CreatedAt)
}

package models

import (
	"errors"
	"strings"
	"testing"
)

func TestNewCheckRun(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		scenario string
		wantErr  error
	}{
		{
			name:     "valid run",
			baseURL:  "https://www.demoblaze.com",
			scenario: "verify",
		},
		{
			name:     "empty base URL",
			baseURL:  "",
			scenario: "verify",
			wantErr:  ErrInvalidBaseURL,
		},
		{
			name:     "empty scenario",
			baseURL:  "https://www.demoblaze.com",
			scenario: "",
			wantErr:  ErrInvalidScenario,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := NewCheckRun(tt.baseURL, tt.scenario)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("NewCheckRun() error = %v, wantErr %v", err, tt.wantErr)
				}
				if run != nil {
					t.Error("Expected run to be nil when error occurs")
				}
				return
			}

			if err != nil {
				t.Fatalf("NewCheckRun() unexpected error = %v", err)
			}
			if run.ID == "" {
				t.Error("Run ID should not be empty")
			}
			if !strings.HasPrefix(run.Reference, "CHECK-") {
				t.Errorf("Reference should start with CHECK-, got %s", run.Reference)
			}
			if !run.IsPending() {
				t.Errorf("Expected pending status, got %s", run.Status)
			}
			if run.CreatedAt.IsZero() || !run.CreatedAt.Equal(run.UpdatedAt) {
				t.Error("Timestamps should be set and equal on creation")
			}
		})
	}
}

func newRun(t *testing.T) *CheckRun {
	t.Helper()
	run, err := NewCheckRun("http://localhost:8080", "scenario")
	if err != nil {
		t.Fatalf("NewCheckRun() unexpected error = %v", err)
	}
	return run
}

func TestCheckRun_Pass(t *testing.T) {
	run := newRun(t)

	if err := run.Pass(2, 1180, 1180); err != nil {
		t.Fatalf("Pass() unexpected error = %v", err)
	}

	if !run.Passed() || run.Items != 2 || run.Total != 1180 || run.Sum != 1180 {
		t.Errorf("unexpected run after Pass: %+v", run)
	}
	if run.Duration() < 0 {
		t.Error("Duration should not be negative")
	}
}

func TestCheckRun_Fail(t *testing.T) {
	run := newRun(t)

	if err := run.Fail(1, 235, 230, ""); err != ErrMissingDetail {
		t.Errorf("Fail() without detail error = %v, want %v", err, ErrMissingDetail)
	}
	if !run.IsPending() {
		t.Fatal("Rejected Fail() must not change status")
	}

	if err := run.Fail(1, 235, 230, "total 235 != sum 230"); err != nil {
		t.Fatalf("Fail() unexpected error = %v", err)
	}
	if run.Status != CheckStatusFailed || run.Total != 235 || run.Sum != 230 || run.Detail == "" {
		t.Errorf("unexpected run after Fail: %+v", run)
	}
}

func TestCheckRun_Errored(t *testing.T) {
	run := newRun(t)

	if err := run.Errored("timed out"); err != nil {
		t.Fatalf("Errored() unexpected error = %v", err)
	}
	if run.Status != CheckStatusErrored || run.Detail != "timed out" {
		t.Errorf("unexpected run after Errored: %+v", run)
	}
}

func TestCheckRun_TransitionsAreFinal(t *testing.T) {
	finishers := map[string]func(*CheckRun) error{
		"pass":  func(r *CheckRun) error { return r.Pass(0, 0, 0) },
		"fail":  func(r *CheckRun) error { return r.Fail(0, 1, 0, "mismatch") },
		"error": func(r *CheckRun) error { return r.Errored("boom") },
	}

	for first, finishFirst := range finishers {
		for second, finishSecond := range finishers {
			t.Run(first+" then "+second, func(t *testing.T) {
				run := newRun(t)
				if err := finishFirst(run); err != nil {
					t.Fatalf("first transition failed: %v", err)
				}
				status := run.Status

				err := finishSecond(run)

				if !errors.Is(err, ErrInvalidStatusTransition) {
					t.Errorf("expected ErrInvalidStatusTransition, got %v", err)
				}
				if run.Status != status {
					t.Errorf("status changed from %s to %s", status, run.Status)
				}
			})
		}
	}
}

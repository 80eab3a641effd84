package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adyen/cartcheck/internal/cart"
	"github.com/adyen/cartcheck/internal/scenario"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: exitOK},
		{name: "invariant violation", err: fmt.Errorf("verify: %w", &cart.InvariantError{Total: 705, Sum: 700, Items: 1}), want: exitViolation},
		{name: "timeout", err: fmt.Errorf("delete: %w", cart.ErrTimeout), want: exitError},
		{name: "other", err: errors.New("browser crashed"), want: exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestPrintReport(t *testing.T) {
	// GIVEN
	snap := cart.Snapshot{
		Items: []cart.LineItem{{Name: "MacBook air", Price: 700}},
		Total: 705,
	}
	report := scenario.Report{
		Plan:  scenario.Plan{Products: []string{"MacBook air"}},
		Steps: []scenario.Step{{Name: "add MacBook air"}, {Name: "verify", Snapshot: &snap}},
	}
	var buf bytes.Buffer

	// WHEN
	printReport(&buf, report, "CHECK-1")

	// THEN
	require.Equal(t, "CHECK-1 add-verify\n"+
		"  add MacBook air\n"+
		"  verify: 1 items, total $705, sum $700 MISMATCH\n"+
		"    [0] MacBook air $700\n", buf.String())
}

func TestApp_RequiresProducts(t *testing.T) {
	app := newApp(false)
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"cartcheck", "verify"})

	require.ErrorContains(t, err, "product")
}

func TestApp_HistoryWithoutPostgres(t *testing.T) {
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOSTNAME"} {
		t.Setenv(key, "")
	}
	app := newApp(false)
	var out bytes.Buffer
	app.Writer = &out

	err := app.Run([]string{"cartcheck", "history"})

	require.ErrorContains(t, err, "run history is disabled")
}

// Package scenario drives a storefront session through a shopping flow and
// verifies the cart after every step that changes it.
package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adyen/cartcheck/internal/cart"
)

// ErrEmptyPlan is returned when a plan names no product to add
var ErrEmptyPlan = errors.New("plan adds no products")

// Shopper navigates the catalog and fills the cart of one storefront session
type Shopper interface {
	Home(ctx context.Context) error
	OpenCategory(ctx context.Context, name string) error
	OpenProduct(ctx context.Context, name string) error
	AddToCart(ctx context.Context) error
	OpenCart(ctx context.Context, minItems int) error
}

// Plan describes one scenario. Category is optional; Delete and Clear run after the first verification.
type Plan struct {
	Category string
	Products []string
	Delete   string
	Clear    bool
}

// Name returns a short label for run history
func (p Plan) Name() string {
	switch {
	case p.Clear:
		return "add-verify-clear"
	case p.Delete != "":
		return "add-verify-delete"
	default:
		return "add-verify"
	}
}

// Step is one completed scenario step. Snapshot is set for steps that read the cart.
type Step struct {
	Name     string
	Snapshot *cart.Snapshot
}

// Report lists the steps a run completed, in order
type Report struct {
	Plan  Plan
	Steps []Step
}

// Last returns the most recent cart snapshot, or an empty one if none was taken
func (r Report) Last() cart.Snapshot {
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if r.Steps[i].Snapshot != nil {
			return *r.Steps[i].Snapshot
		}
	}
	return cart.Snapshot{}
}

// Runner executes plans against a shopper and its cart
type Runner struct {
	shopper Shopper
	cart    *cart.Cart
	logger  zerolog.Logger
}

// NewRunner creates a runner for one session
func NewRunner(shopper Shopper, c *cart.Cart, logger zerolog.Logger) *Runner {
	return &Runner{shopper: shopper, cart: c, logger: logger}
}

// Run adds every product, verifies the cart, then optionally deletes one product by name and
// clears the cart, verifying again after each. The report holds every step completed before
// the first error.
func (r *Runner) Run(ctx context.Context, plan Plan) (Report, error) {
	report := Report{Plan: plan}
	if len(plan.Products) == 0 {
		return report, ErrEmptyPlan
	}

	for _, name := range plan.Products {
		if err := r.add(ctx, plan.Category, name); err != nil {
			return report, fmt.Errorf("add %q: %w", name, err)
		}
		report.Steps = append(report.Steps, Step{Name: "add " + name})
	}

	if err := r.shopper.OpenCart(ctx, len(plan.Products)); err != nil {
		return report, fmt.Errorf("open cart: %w", err)
	}
	if err := r.verify(ctx, &report, "verify"); err != nil {
		return report, err
	}

	if plan.Delete != "" {
		if err := r.cart.DeleteByName(ctx, plan.Delete); err != nil {
			return report, fmt.Errorf("delete %q: %w", plan.Delete, err)
		}
		report.Steps = append(report.Steps, Step{Name: "delete " + plan.Delete})
		if err := r.verify(ctx, &report, "verify after delete"); err != nil {
			return report, err
		}
	}

	if plan.Clear {
		if err := r.cart.ClearAll(ctx); err != nil {
			return report, fmt.Errorf("clear: %w", err)
		}
		report.Steps = append(report.Steps, Step{Name: "clear"})
		if err := r.verify(ctx, &report, "verify empty"); err != nil {
			return report, err
		}
		if n := len(report.Last().Items); n != 0 {
			return report, fmt.Errorf("verify empty: %d line items left after clear", n)
		}
	}

	r.logger.Info().Str("scenario", plan.Name()).Int("steps", len(report.Steps)).Msg("scenario passed")
	return report, nil
}

func (r *Runner) add(ctx context.Context, category, name string) error {
	if err := r.shopper.Home(ctx); err != nil {
		return err
	}
	if category != "" {
		if err := r.shopper.OpenCategory(ctx, category); err != nil {
			return err
		}
	}
	if err := r.shopper.OpenProduct(ctx, name); err != nil {
		return err
	}
	return r.shopper.AddToCart(ctx)
}

// verify records the checked snapshot even when the invariant does not hold
func (r *Runner) verify(ctx context.Context, report *Report, step string) error {
	snap, err := r.cart.Verify(ctx)
	var invariant *cart.InvariantError
	if err != nil && !errors.As(err, &invariant) {
		return fmt.Errorf("%s: %w", step, err)
	}
	report.Steps = append(report.Steps, Step{Name: step, Snapshot: &snap})
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}

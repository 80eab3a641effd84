package scenario

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/adyen/cartcheck/internal/cart"
)

// fakeShop is a synchronous storefront session: deletions apply as soon as they settle
type fakeShop struct {
	prices map[string]int
	skew   int

	rows     []string
	open     string
	calls    []string
	OpenFunc func(name string) error
}

func newFakeShop() *fakeShop {
	return &fakeShop{prices: map[string]int{
		"Samsung galaxy s6": 360,
		"Nokia lumia 1520":  820,
		"MacBook air":       700,
	}}
}

func (f *fakeShop) Home(context.Context) error {
	f.calls = append(f.calls, "home")
	return nil
}

func (f *fakeShop) OpenCategory(_ context.Context, name string) error {
	f.calls = append(f.calls, "category "+name)
	return nil
}

func (f *fakeShop) OpenProduct(_ context.Context, name string) error {
	if f.OpenFunc != nil {
		if err := f.OpenFunc(name); err != nil {
			return err
		}
	}
	if _, ok := f.prices[name]; !ok {
		return fmt.Errorf("product %q not listed", name)
	}
	f.open = name
	return nil
}

func (f *fakeShop) AddToCart(context.Context) error {
	f.rows = append(f.rows, f.open)
	return nil
}

func (f *fakeShop) OpenCart(_ context.Context, minItems int) error {
	f.calls = append(f.calls, "cart "+strconv.Itoa(minItems))
	return nil
}

func (f *fakeShop) ItemCount(context.Context) (int, error) { return len(f.rows), nil }

func (f *fakeShop) ItemText(_ context.Context, position int) (string, string, error) {
	name := f.rows[position]
	return name, "$" + strconv.Itoa(f.prices[name]), nil
}

func (f *fakeShop) TotalText(context.Context) (string, error) {
	if len(f.rows) == 0 {
		return "", nil
	}
	total := f.skew
	for _, name := range f.rows {
		total += f.prices[name]
	}
	return strconv.Itoa(total), nil
}

func (f *fakeShop) RequestDelete(_ context.Context, position int) (cart.Removal, error) {
	return removalFunc(func(context.Context) error {
		f.rows = append(f.rows[:position], f.rows[position+1:]...)
		return nil
	}), nil
}

type removalFunc func(context.Context) error

func (r removalFunc) Settled(ctx context.Context) error { return r(ctx) }

func newRunner(shop *fakeShop) *Runner {
	c := cart.New(shop, cart.WithPollInterval(time.Millisecond), cart.WithSettleTimeout(time.Second))
	return NewRunner(shop, c, zerolog.Nop())
}

func stepNames(r Report) []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Name
	}
	return names
}

func TestRunner_AddAndVerify(t *testing.T) {
	// GIVEN
	shop := newFakeShop()
	plan := Plan{Category: "Phones", Products: []string{"Samsung galaxy s6", "Nokia lumia 1520"}}

	// WHEN
	report, err := newRunner(shop).Run(context.Background(), plan)

	// THEN
	require.NoError(t, err)
	require.Equal(t, []string{"add Samsung galaxy s6", "add Nokia lumia 1520", "verify"}, stepNames(report))
	require.Equal(t, []string{"home", "category Phones", "home", "category Phones", "cart 2"}, shop.calls)

	last := report.Last()
	require.Len(t, last.Items, 2)
	require.EqualValues(t, 1180, last.Total)
	require.True(t, last.Consistent())
}

func TestRunner_DeleteThenClear(t *testing.T) {
	// GIVEN
	shop := newFakeShop()
	plan := Plan{
		Products: []string{"Samsung galaxy s6", "MacBook air", "Nokia lumia 1520"},
		Delete:   "MacBook air",
		Clear:    true,
	}

	// WHEN
	report, err := newRunner(shop).Run(context.Background(), plan)

	// THEN
	require.NoError(t, err)
	require.Equal(t, []string{
		"add Samsung galaxy s6", "add MacBook air", "add Nokia lumia 1520",
		"verify", "delete MacBook air", "verify after delete", "clear", "verify empty",
	}, stepNames(report))

	afterDelete := report.Steps[5].Snapshot
	require.NotNil(t, afterDelete)
	require.Equal(t, []string{"Samsung galaxy s6", "Nokia lumia 1520"}, afterDelete.Names())
	require.EqualValues(t, 1180, afterDelete.Total)

	require.Empty(t, report.Last().Items)
	require.EqualValues(t, 0, report.Last().Total)
	require.Equal(t, "add-verify-clear", plan.Name())
}

func TestRunner_InvariantViolationKeepsSnapshot(t *testing.T) {
	// GIVEN
	shop := newFakeShop()
	shop.skew = 5

	// WHEN
	report, err := newRunner(shop).Run(context.Background(), Plan{Products: []string{"MacBook air"}, Clear: true})

	// THEN
	require.ErrorIs(t, err, cart.ErrInvariantViolation)
	require.Equal(t, []string{"add MacBook air", "verify"}, stepNames(report))
	require.EqualValues(t, 705, report.Last().Total)
	require.EqualValues(t, 700, report.Last().Sum())
	require.Len(t, shop.rows, 1, "no mutation after a failed verification")
}

func TestRunner_DeleteMissingProduct(t *testing.T) {
	shop := newFakeShop()

	report, err := newRunner(shop).Run(context.Background(), Plan{Products: []string{"Nokia lumia 1520"}, Delete: "Nexus 6"})

	require.ErrorIs(t, err, cart.ErrNotFound)
	require.True(t, cart.Retryable(err))
	require.Equal(t, []string{"add Nokia lumia 1520", "verify"}, stepNames(report))
}

func TestRunner_AddFailure(t *testing.T) {
	shop := newFakeShop()
	boom := errors.New("page crashed")
	shop.OpenFunc = func(name string) error {
		if name == "Nokia lumia 1520" {
			return boom
		}
		return nil
	}

	report, err := newRunner(shop).Run(context.Background(), Plan{Products: []string{"Samsung galaxy s6", "Nokia lumia 1520"}})

	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), `add "Nokia lumia 1520"`)
	require.Equal(t, []string{"add Samsung galaxy s6"}, stepNames(report))
	require.Equal(t, cart.Snapshot{}, report.Last())
}

func TestRunner_EmptyPlan(t *testing.T) {
	_, err := newRunner(newFakeShop()).Run(context.Background(), Plan{})

	require.ErrorIs(t, err, ErrEmptyPlan)
}

func TestPlan_Name(t *testing.T) {
	require.Equal(t, "add-verify", Plan{Products: []string{"x"}}.Name())
	require.Equal(t, "add-verify-delete", Plan{Products: []string{"x"}, Delete: "x"}.Name())
}

package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adyen/cartcheck/internal/price"
	"github.com/adyen/cartcheck/internal/wait"
)

// Driver reads and mutates one cart view of a remote storefront
type Driver interface {
	ItemCount(ctx context.Context) (int, error)
	ItemText(ctx context.Context, position int) (name, rawPrice string, err error)
	TotalText(ctx context.Context) (string, error)
	RequestDelete(ctx context.Context, position int) (Removal, error)
}

// Removal is a deletion the storefront has accepted but may not have applied yet
type Removal interface {
	// Settled blocks until the deleted row is no longer present
	Settled(ctx context.Context) error
}

// Recorder observes verification outcomes and settlement latency
type Recorder interface {
	ObserveVerification(consistent bool)
	ObserveSettlement(d time.Duration)
}

// Default timings for settlement waits
const (
	DefaultSettleTimeout = 10 * time.Second
	DefaultPollInterval  = 250 * time.Millisecond
)

// Cart verifies that a storefront cart's total matches its line items across mutations
type Cart struct {
	driver        Driver
	logger        zerolog.Logger
	recorder      Recorder
	settleTimeout time.Duration
	pollInterval  time.Duration
}

// Option configures a Cart
type Option func(*Cart)

// WithLogger sets the logger used for mutations and verification outcomes
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cart) { c.logger = logger }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *Cart) { c.recorder = r }
}

// WithSettleTimeout bounds how long a deletion may take to become visible
func WithSettleTimeout(d time.Duration) Option {
	return func(c *Cart) {
		if d > 0 {
			c.settleTimeout = d
		}
	}
}

// WithPollInterval sets how often the item count is re-read while settling
func WithPollInterval(d time.Duration) Option {
	return func(c *Cart) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// New creates a Cart on top of a driver bound to one storefront session
func New(driver Driver, opts ...Option) *Cart {
	c := &Cart{
		driver:        driver,
		logger:        zerolog.Nop(),
		recorder:      nopRecorder{},
		settleTimeout: DefaultSettleTimeout,
		pollInterval:  DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ItemCount returns the number of line items currently visible
func (c *Cart) ItemCount(ctx context.Context) (int, error) {
	n, err := c.driver.ItemCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count line items: %w", err)
	}
	return n, nil
}

// LineItem returns the line item at position, with its price normalized
func (c *Cart) LineItem(ctx context.Context, position int) (LineItem, error) {
	n, err := c.ItemCount(ctx)
	if err != nil {
		return LineItem{}, err
	}
	if position < 0 || position >= n {
		return LineItem{}, fmt.Errorf("%w: position %d, cart has %d items", ErrOutOfRange, position, n)
	}
	return c.readItem(ctx, position)
}

// Total returns the normalized reported total
func (c *Cart) Total(ctx context.Context) (price.Amount, error) {
	raw, err := c.driver.TotalText(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read cart total: %w", err)
	}
	return price.Normalize(raw), nil
}

// Snapshot reads every line item and the reported total
func (c *Cart) Snapshot(ctx context.Context) (Snapshot, error) {
	n, err := c.ItemCount(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	items := make([]LineItem, 0, n)
	for i := 0; i < n; i++ {
		item, err := c.readItem(ctx, i)
		if err != nil {
			return Snapshot{}, err
		}
		items = append(items, item)
	}

	total, err := c.Total(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Items: items, Total: total}, nil
}

// VerifyTotalMatchesSum reports whether the reported total equals the sum of the line items.
// A mismatch is a result, not an error.
func (c *Cart) VerifyTotalMatchesSum(ctx context.Context) (bool, error) {
	_, err := c.Verify(ctx)
	var invariant *InvariantError
	if errors.As(err, &invariant) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Verify reads a snapshot and returns an *InvariantError when its total differs from the
// line item sum. The returned snapshot is the one that was checked.
func (c *Cart) Verify(ctx context.Context) (Snapshot, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	ok := snap.Consistent()
	c.recorder.ObserveVerification(ok)

	level := zerolog.InfoLevel
	if !ok {
		level = zerolog.WarnLevel
	}
	c.logger.WithLevel(level).
		Int("items", len(snap.Items)).
		Int64("total", int64(snap.Total)).
		Int64("sum", int64(snap.Sum())).
		Bool("consistent", ok).
		Msg("cart verified")

	return snap, snap.Check()
}

// DeleteAt removes the line item at position and waits until the storefront shows one item fewer
func (c *Cart) DeleteAt(ctx context.Context, position int) error {
	before, err := c.ItemCount(ctx)
	if err != nil {
		return err
	}
	if position < 0 || position >= before {
		return fmt.Errorf("%w: no line item at position %d, cart has %d items", ErrNotFound, position, before)
	}

	start := time.Now()
	log := c.logger.With().Int("position", position).Int("items_before", before).Logger()
	log.Debug().Msg("requesting deletion")

	removal, err := c.driver.RequestDelete(ctx, position)
	if err != nil {
		return fmt.Errorf("failed to delete line item %d: %w", position, err)
	}

	settleCtx, cancel := context.WithTimeout(ctx, c.settleTimeout)
	defer cancel()

	if err := removal.Settled(settleCtx); err != nil {
		return settleError(position, err)
	}

	// the row can detach before the listing is re-rendered with the remaining items
	err = wait.Until(settleCtx, c.pollInterval, 0, func(ctx context.Context) (bool, error) {
		n, err := c.driver.ItemCount(ctx)
		if err != nil {
			return false, err
		}
		return n == before-1, nil
	})
	if err != nil {
		return settleError(position, err)
	}

	elapsed := time.Since(start)
	c.recorder.ObserveSettlement(elapsed)
	log.Info().Dur("settled_in", elapsed).Msg("line item deleted")
	return nil
}

// DeleteByName deletes the first line item, in position order, whose name matches exactly
func (c *Cart) DeleteByName(ctx context.Context, name string) error {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return err
	}
	item, ok := snap.Find(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c.DeleteAt(ctx, item.Position)
}

// DeleteAllByName deletes every line item with the given name and returns how many were removed.
// Positions shift after each deletion, so the listing is re-read every time.
func (c *Cart) DeleteAllByName(ctx context.Context, name string) (int, error) {
	deleted := 0
	for {
		err := c.DeleteByName(ctx, name)
		if errors.Is(err, ErrNotFound) && deleted > 0 {
			return deleted, nil
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
}

// ClearAll deletes every line item, last position first, until the cart is empty
func (c *Cart) ClearAll(ctx context.Context) error {
	for {
		n, err := c.ItemCount(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			c.logger.Info().Msg("cart cleared")
			return nil
		}
		if err := c.DeleteAt(ctx, n-1); err != nil {
			return err
		}
	}
}

// PriceOf returns the price of the first line item with the given name
func (c *Cart) PriceOf(ctx context.Context, name string) (price.Amount, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	item, ok := snap.Find(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return item.Price, nil
}

// Names returns the line item names in render order
func (c *Cart) Names(ctx context.Context) ([]string, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Names(), nil
}

func (c *Cart) readItem(ctx context.Context, position int) (LineItem, error) {
	name, raw, err := c.driver.ItemText(ctx, position)
	if err != nil {
		return LineItem{}, fmt.Errorf("failed to read line item %d: %w", position, err)
	}
	return LineItem{Name: name, Price: price.Normalize(raw), Position: position}, nil
}

func settleError(position int, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("line item %d did not settle: %w", position, err)
}

type nopRecorder struct{}

func (nopRecorder) ObserveVerification(bool)         {}
func (nopRecorder) ObserveSettlement(time.Duration) {}

package storefront

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/adyen/cartcheck/internal/cart"
	"github.com/adyen/cartcheck/internal/config"
	"github.com/adyen/cartcheck/internal/wait"
)

// ErrUnexpectedDialog is returned when the add-to-cart confirmation says something else
var ErrUnexpectedDialog = errors.New("unexpected dialog after add to cart")

// ErrProductNotListed is returned when a product is not shown in the current listing
var ErrProductNotListed = errors.New("product not listed")

// Product is a catalog card as shown in a listing
type Product struct {
	Name     string
	RawPrice string
}

// Browser owns the Playwright driver and one launched browser
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     *config.StorefrontConfig
	sel     Selectors
	logger  zerolog.Logger
}

// Launch starts Playwright and the configured browser engine
func Launch(cfg *config.StorefrontConfig, logger zerolog.Logger) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var engine playwright.BrowserType
	switch cfg.Browser {
	case config.BrowserFirefox:
		engine = pw.Firefox
	case config.BrowserWebKit:
		engine = pw.WebKit
	default:
		engine = pw.Chromium
	}

	browser, err := engine.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Browser, err)
	}

	logger.Debug().Str("browser", cfg.Browser).Bool("headless", cfg.Headless).Msg("browser launched")
	return &Browser{pw: pw, browser: browser, cfg: cfg, sel: DefaultSelectors(), logger: logger}, nil
}

// WithSelectors replaces the selectors used by sessions opened afterwards
func (b *Browser) WithSelectors(sel Selectors) *Browser {
	b.sel = sel
	return b
}

// Close shuts down the browser and the Playwright driver
func (b *Browser) Close() error {
	var errs []error
	if err := b.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// NewSession opens an isolated browser context, so cookies and cart are never shared between sessions
func (b *Browser) NewSession() (*Session, error) {
	return b.NewSessionAt(b.cfg.BaseURL)
}

// NewSessionAt is NewSession against another storefront served with the same markup
func (b *Browser) NewSessionAt(baseURL string) (*Session, error) {
	cfg := *b.cfg
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	bctx, err := b.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return newSession(bctx, page, &cfg, b.sel, b.logger), nil
}

// Session is one storefront visitor with its own cart. It implements cart.Driver.
type Session struct {
	ID      string
	bctx    playwright.BrowserContext
	page    playwright.Page
	baseURL string
	sel     Selectors
	timeout time.Duration
	poll    time.Duration
	logger  zerolog.Logger
	dialogs chan string
}

var _ cart.Driver = (*Session)(nil)

func newSession(bctx playwright.BrowserContext, page playwright.Page, cfg *config.StorefrontConfig, sel Selectors, logger zerolog.Logger) *Session {
	id := uuid.New().String()
	s := &Session{
		ID:      id,
		bctx:    bctx,
		page:    page,
		baseURL: cfg.BaseURL,
		sel:     sel,
		timeout: cfg.Timeout,
		poll:    cfg.PollInterval,
		logger:  logger.With().Str("session_id", id).Logger(),
		dialogs: make(chan string, 8),
	}
	page.SetDefaultTimeout(millis(cfg.Timeout))

	// an unacknowledged alert blocks every further action on the page
	page.OnDialog(func(d playwright.Dialog) {
		msg := d.Message()
		if err := d.Accept(); err != nil {
			s.logger.Warn().Err(err).Str("dialog", msg).Msg("failed to accept dialog")
		}
		select {
		case s.dialogs <- msg:
		default:
		}
	})
	return s
}

// Close closes the session's browser context
func (s *Session) Close() error {
	return s.bctx.Close()
}

// Home opens the storefront landing page and waits for the catalog to render
func (s *Session) Home(ctx context.Context) error {
	if err := s.goTo(ctx, "/"); err != nil {
		return err
	}
	return s.waitVisible(ctx, s.page.Locator(s.sel.ProductCard).First(), "product card")
}

// OpenCategory selects a catalog category by its link text
func (s *Session) OpenCategory(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	link := s.page.Locator(fmt.Sprintf("%s:text-is(%s)", s.sel.CategoryLink, strconv.Quote(name)))
	if err := link.Click(playwright.LocatorClickOptions{Timeout: s.timeoutFor(ctx)}); err != nil {
		return translate(fmt.Errorf("failed to open category %q: %w", name, err))
	}
	s.logger.Debug().Str("category", name).Msg("category opened")
	return s.waitVisible(ctx, s.page.Locator(s.sel.ProductCard).First(), "product card")
}

// Products lists the product cards currently rendered
func (s *Session) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cards := s.page.Locator(s.sel.ProductCard)
	n, err := cards.Count()
	if err != nil {
		return nil, translate(fmt.Errorf("failed to count products: %w", err))
	}

	products := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		card := cards.Nth(i)
		name, err := card.Locator(s.sel.ProductTitle).TextContent()
		if err != nil {
			return nil, translate(fmt.Errorf("failed to read product %d name: %w", i, err))
		}
		raw, err := card.Locator(s.sel.ProductPrice).TextContent()
		if err != nil {
			return nil, translate(fmt.Errorf("failed to read product %d price: %w", i, err))
		}
		products = append(products, Product{Name: strings.TrimSpace(name), RawPrice: strings.TrimSpace(raw)})
	}
	return products, nil
}

// OpenProduct opens the product page of the named product in the current listing
func (s *Session) OpenProduct(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	title := s.page.Locator(fmt.Sprintf("%s %s:text-is(%s)", s.sel.ProductCard, s.sel.ProductTitle, strconv.Quote(name)))
	if err := title.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: s.timeoutFor(ctx),
	}); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrProductNotListed, name, translate(err))
	}
	if err := title.Click(playwright.LocatorClickOptions{Timeout: s.timeoutFor(ctx)}); err != nil {
		return translate(fmt.Errorf("failed to open product %q: %w", name, err))
	}
	return s.waitVisible(ctx, s.page.Locator(s.sel.DetailName), "product name")
}

// OpenProductAt opens the product at the given position of the current listing
func (s *Session) OpenProductAt(ctx context.Context, index int) error {
	products, err := s.Products(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(products) {
		return fmt.Errorf("%w: index %d of %d", ErrProductNotListed, index, len(products))
	}
	return s.OpenProduct(ctx, products[index].Name)
}

// ProductDetails returns the name and raw price shown on the open product page
func (s *Session) ProductDetails(ctx context.Context) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	name, err := s.page.Locator(s.sel.DetailName).TextContent()
	if err != nil {
		return Product{}, translate(fmt.Errorf("failed to read product name: %w", err))
	}
	raw, err := s.page.Locator(s.sel.DetailPrice).TextContent()
	if err != nil {
		return Product{}, translate(fmt.Errorf("failed to read product price: %w", err))
	}
	return Product{Name: strings.TrimSpace(name), RawPrice: strings.TrimSpace(raw)}, nil
}

// AddToCart clicks "Add to cart" and waits for the storefront to confirm with a dialog
func (s *Session) AddToCart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.drainDialogs()

	if err := s.page.Locator(s.sel.AddToCart).Click(playwright.LocatorClickOptions{Timeout: s.timeoutFor(ctx)}); err != nil {
		return translate(fmt.Errorf("failed to click add to cart: %w", err))
	}

	timer := time.NewTimer(s.remaining(ctx))
	defer timer.Stop()

	select {
	case msg := <-s.dialogs:
		if !strings.Contains(strings.ToLower(msg), "added") {
			return fmt.Errorf("%w: %q", ErrUnexpectedDialog, msg)
		}
		s.logger.Info().Str("dialog", msg).Msg("product added")
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: no add to cart confirmation within %s", wait.ErrTimeout, s.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenCart navigates to the cart and waits until at least minItems rows and a total are rendered
func (s *Session) OpenCart(ctx context.Context, minItems int) error {
	if err := s.goTo(ctx, s.sel.CartPath); err != nil {
		return err
	}
	if minItems <= 0 {
		return nil
	}

	err := wait.Until(ctx, s.poll, s.timeout, func(ctx context.Context) (bool, error) {
		n, err := s.ItemCount(ctx)
		if err != nil || n < minItems {
			return false, err
		}
		total, err := s.TotalText(ctx)
		if err != nil {
			return false, err
		}
		return strings.TrimSpace(total) != "", nil
	})
	if err != nil {
		return fmt.Errorf("cart did not show %d items: %w", minItems, err)
	}
	return nil
}

// ItemCount returns the number of rendered cart rows
func (s *Session) ItemCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.page.Locator(s.sel.CartRow).Count()
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// ItemText returns the display name and raw price text of the row at position
func (s *Session) ItemText(ctx context.Context, position int) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	row := s.page.Locator(s.sel.CartRow).Nth(position)
	name, err := row.Locator(s.sel.RowName).TextContent(playwright.LocatorTextContentOptions{Timeout: s.timeoutFor(ctx)})
	if err != nil {
		return "", "", translate(err)
	}
	raw, err := row.Locator(s.sel.RowPrice).TextContent(playwright.LocatorTextContentOptions{Timeout: s.timeoutFor(ctx)})
	if err != nil {
		return "", "", translate(err)
	}
	return strings.TrimSpace(name), strings.TrimSpace(raw), nil
}

// TotalText returns the raw text of the reported cart total
func (s *Session) TotalText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	total := s.page.Locator(s.sel.CartTotal)
	n, err := total.Count()
	if err != nil {
		return "", translate(err)
	}
	if n == 0 {
		return "", nil
	}
	text, err := total.First().TextContent(playwright.LocatorTextContentOptions{Timeout: s.timeoutFor(ctx)})
	if err != nil {
		return "", translate(err)
	}
	return strings.TrimSpace(text), nil
}

// RequestDelete clicks the delete link of the row at position.
// The returned removal settles once that exact row element is detached.
func (s *Session) RequestDelete(ctx context.Context, position int) (cart.Removal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.page.Locator(s.sel.CartRow).Nth(position)
	handle, err := row.ElementHandle(playwright.LocatorElementHandleOptions{Timeout: s.timeoutFor(ctx)})
	if err != nil {
		return nil, translate(fmt.Errorf("failed to resolve row %d: %w", position, err))
	}
	if err := row.Locator(s.sel.RowDelete).Click(playwright.LocatorClickOptions{Timeout: s.timeoutFor(ctx)}); err != nil {
		handle.Dispose()
		return nil, translate(fmt.Errorf("failed to click delete on row %d: %w", position, err))
	}
	s.logger.Debug().Int("position", position).Msg("delete clicked")
	return &rowRemoval{session: s, handle: handle}, nil
}

type rowRemoval struct {
	session *Session
	handle  playwright.ElementHandle
}

// Settled waits for the attached to detached transition of the deleted row
func (r *rowRemoval) Settled(ctx context.Context) error {
	defer r.handle.Dispose()
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.session.page.WaitForFunction("row => !row.isConnected", r.handle, playwright.PageWaitForFunctionOptions{
		Polling: playwright.Float(millis(r.session.poll)),
		Timeout: r.session.timeoutFor(ctx),
	})
	if err != nil {
		return translate(fmt.Errorf("row still attached: %w", err))
	}
	return nil
}

func (s *Session) goTo(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	url := s.baseURL + path
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{Timeout: s.timeoutFor(ctx)}); err != nil {
		return translate(fmt.Errorf("failed to navigate to %s: %w", url, err))
	}
	s.logger.Debug().Str("url", url).Msg("navigated")
	return nil
}

func (s *Session) waitVisible(ctx context.Context, loc playwright.Locator, what string) error {
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: s.timeoutFor(ctx),
	}); err != nil {
		return translate(fmt.Errorf("%s did not become visible: %w", what, err))
	}
	return nil
}

func (s *Session) drainDialogs() {
	for {
		select {
		case <-s.dialogs:
		default:
			return
		}
	}
}

// remaining is the configured timeout, shortened to the context deadline
func (s *Session) remaining(ctx context.Context) time.Duration {
	d := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

func (s *Session) timeoutFor(ctx context.Context) *float64 {
	return playwright.Float(millis(s.remaining(ctx)))
}

// translate maps Playwright timeouts onto wait.ErrTimeout
func translate(err error) error {
	if err != nil && errors.Is(err, playwright.ErrTimeout) && !errors.Is(err, wait.ErrTimeout) {
		return fmt.Errorf("%w: %w", wait.ErrTimeout, err)
	}
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

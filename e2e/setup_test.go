//go:build e2e

package e2e

import (
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adyen/cartcheck/internal/cart"
	"github.com/adyen/cartcheck/internal/cli"
	"github.com/adyen/cartcheck/internal/config"
	"github.com/adyen/cartcheck/internal/obs"
	"github.com/adyen/cartcheck/internal/storefront"
)

var (
	browser *storefront.Browser
	// storeURL serves a consistent cart; skewedURL adds 5 to every cart total
	storeURL  string
	skewedURL string
	logger    zerolog.Logger
)

// startStore serves a demo storefront on a free port
func startStore(cfg config.ServerConfig) (string, func(), error) {
	deps, err := cli.NewStoreDependencies(cfg, logger)
	if err != nil {
		return "", nil, err
	}
	listener, server, err := cli.StartServer(deps)
	if err != nil {
		return "", nil, err
	}
	stop := func() {
		server.Close()
		listener.Close()
	}
	return fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port), stop, nil
}

// TestMain starts two demo storefronts and one browser for all tests
func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	logCfg := config.LoadLoggingConfig(os.Getenv)
	logger = obs.NewLogger(logCfg.Format, logCfg.Level)

	var stop func()
	var err error
	storeURL, stop, err = startStore(config.ServerConfig{Port: "0", DeleteDelay: 300 * time.Millisecond})
	if err != nil {
		panic(err)
	}
	defer stop()

	skewedURL, stop, err = startStore(config.ServerConfig{Port: "0", DeleteDelay: 300 * time.Millisecond, TotalSkew: 5})
	if err != nil {
		panic(err)
	}
	defer stop()

	// Browsers must be installed: go run github.com/playwright-community/playwright-go/cmd/playwright@v0.5200.1 install chromium
	browser, err = storefront.Launch(&config.StorefrontConfig{
		BaseURL:       storeURL,
		Browser:       config.BrowserChromium,
		Headless:      os.Getenv("CARTCHECK_HEADLESS") != "false",
		Timeout:       10 * time.Second,
		SettleTimeout: 10 * time.Second,
		PollInterval:  100 * time.Millisecond,
	}, logger)
	if err != nil {
		panic(err)
	}
	defer browser.Close()

	return m.Run()
}

// newSession opens a fresh visitor on baseURL and its cart
func newSession(t *testing.T, baseURL string) (*storefront.Session, *cart.Cart) {
	t.Helper()
	session, err := browser.NewSessionAt(baseURL)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	c := cart.New(session,
		cart.WithLogger(logger.With().Str("session_id", session.ID).Logger()),
		cart.WithSettleTimeout(10*time.Second),
		cart.WithPollInterval(100*time.Millisecond),
	)
	return session, c
}

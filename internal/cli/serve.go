package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/adyen/cartcheck/internal/config"
	"github.com/adyen/cartcheck/internal/handlers"
)

// ServerDependencies holds all dependencies needed for the demo storefront
type ServerDependencies struct {
	ServerConfig    config.ServerConfig
	Logger          zerolog.Logger
	HomeHandler     http.Handler
	ProductHandler  http.Handler
	CartPageHandler http.Handler
	CartAPIHandler  http.Handler
	// Gatherer is exposed on /metrics when set
	Gatherer prometheus.Gatherer
}

// NewStoreDependencies wires the demo storefront handlers around a fresh in-memory cart store
func NewStoreDependencies(cfg config.ServerConfig, logger zerolog.Logger) (ServerDependencies, error) {
	tmpl, err := handlers.ParseTemplates()
	if err != nil {
		return ServerDependencies{}, err
	}
	catalog := handlers.DefaultCatalog()

	return ServerDependencies{
		ServerConfig:    cfg,
		Logger:          logger,
		HomeHandler:     handlers.NewHomeHandler(tmpl, catalog, logger),
		ProductHandler:  handlers.NewProductHandler(tmpl, catalog, logger),
		CartPageHandler: handlers.NewCartPageHandler(tmpl, cfg.DeleteDelay, logger),
		CartAPIHandler:  handlers.NewCartAPIHandler(handlers.NewCartStore(), catalog, cfg.TotalSkew, logger),
	}, nil
}

// RunServe starts the demo storefront and blocks until SIGINT or SIGTERM
func RunServe(deps ServerDependencies) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, deps.Logger, nil)
}

// StartServer creates and starts the HTTP server, returning the listener and server
func StartServer(deps ServerDependencies) (net.Listener, *http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/", deps.HomeHandler)
	mux.Handle("/prod.html", deps.ProductHandler)
	mux.Handle("/cart.html", deps.CartPageHandler)
	mux.Handle("/api/cart", deps.CartAPIHandler)
	mux.Handle("/api/cart/", deps.CartAPIHandler)
	if deps.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	addr := fmt.Sprintf(":%s", deps.ServerConfig.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := deps.Logger
	go func() {
		logger.Info().Str("addr", listener.Addr().String()).Msg("demo storefront listening")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
		}
	}()

	return listener, server, nil
}

// WaitForShutdown waits for a shutdown signal and gracefully shuts down the server.
// If shutdown is nil, a channel is created and registered with signal.Notify.
func WaitForShutdown(server *http.Server, logger zerolog.Logger, shutdown chan os.Signal) error {
	return WaitForShutdownWithTimeout(server, logger, shutdown, 30*time.Second)
}

// WaitForShutdownWithTimeout allows specifying a custom shutdown timeout
func WaitForShutdownWithTimeout(server *http.Server, logger zerolog.Logger, shutdown chan os.Signal, shutdownTimeout time.Duration) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)
	}

	sig := <-shutdown
	logger.Info().Str("signal", sig.String()).Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		// http.Server.Close does not surface listener close errors, so this rarely fails
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	logger.Info().Msg("server stopped")
	return nil
}

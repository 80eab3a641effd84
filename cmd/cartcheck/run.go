package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/adyen/cartcheck/internal/cart"
	"github.com/adyen/cartcheck/internal/config"
	"github.com/adyen/cartcheck/internal/database"
	"github.com/adyen/cartcheck/internal/repository"
	"github.com/adyen/cartcheck/internal/scenario"
	"github.com/adyen/cartcheck/internal/services"
	"github.com/adyen/cartcheck/internal/storefront"
)

// Exit codes
const (
	exitOK        = 0
	exitViolation = 1
	exitError     = 2
)

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cart.ErrInvariantViolation):
		return exitViolation
	default:
		return exitError
	}
}

// storefrontConfig loads the storefront settings, applying the --base-url override
func (a *app) storefrontConfig(c *cli.Context) (*config.StorefrontConfig, error) {
	getenv := a.getenv
	if u := c.String("base-url"); u != "" {
		getenv = func(key string) string {
			if key == "CARTCHECK_BASE_URL" {
				return u
			}
			return a.getenv(key)
		}
	}
	cfg, err := config.LoadStorefrontConfig(getenv)
	if err != nil {
		return nil, fmt.Errorf("invalid storefront configuration: %w", err)
	}
	return cfg, nil
}

// openHistory connects to Postgres when it is configured. The returned repository is nil otherwise.
func (a *app) openHistory(ctx context.Context) (services.CheckRepository, func(), error) {
	pgCfg, err := config.LoadPostgresConfig(a.getenv)
	if errors.Is(err, config.ErrPostgresNotConfigured) {
		a.logger.Debug().Msg("postgres not configured, run history disabled")
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("invalid postgres configuration: %w", err)
	}

	db, err := database.Connect(ctx, pgCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	a.logger.Debug().Str("host", pgCfg.Host).Str("database", pgCfg.Database).Msg("connected to run history database")
	return repository.NewCheckRepository(db), func() { db.Close() }, nil
}

// runPlan executes plan in a fresh browser session and records the outcome as a check run
func (a *app) runPlan(c *cli.Context, plan scenario.Plan) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := a.storefrontConfig(c)
	if err != nil {
		return err
	}

	repo, closeHistory, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	checks := services.NewCheckService(repo, a.metrics, a.logger)
	run, err := checks.Start(ctx, cfg.BaseURL, plan.Name())
	if err != nil {
		return err
	}

	report, runErr := a.execute(ctx, cfg, plan)
	if err := checks.Finish(context.WithoutCancel(ctx), run, report.Last(), runErr); err != nil {
		a.logger.Error().Err(err).Str("reference", run.Reference).Msg("failed to record check run")
	}

	printReport(c.App.Writer, report, run.Reference)
	return runErr
}

func (a *app) execute(ctx context.Context, cfg *config.StorefrontConfig, plan scenario.Plan) (scenario.Report, error) {
	browser, err := storefront.Launch(cfg, a.logger)
	if err != nil {
		return scenario.Report{Plan: plan}, err
	}
	defer func() {
		if err := browser.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close browser")
		}
	}()

	session, err := browser.NewSession()
	if err != nil {
		return scenario.Report{Plan: plan}, err
	}
	defer session.Close()

	log := a.logger.With().Str("session_id", session.ID).Logger()
	c := cart.New(session,
		cart.WithLogger(log),
		cart.WithRecorder(a.metrics),
		cart.WithSettleTimeout(cfg.SettleTimeout),
		cart.WithPollInterval(cfg.PollInterval),
	)
	return scenario.NewRunner(session, c, log).Run(ctx, plan)
}

func (a *app) printHistory(c *cli.Context) error {
	repo, closeHistory, err := a.openHistory(c.Context)
	if err != nil {
		return err
	}
	defer closeHistory()

	runs, err := services.NewCheckService(repo, a.metrics, a.logger).Recent(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tSCENARIO\tSTATUS\tITEMS\tTOTAL\tSUM\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Reference, r.Scenario, r.Status, r.Items, r.Total, r.Sum, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

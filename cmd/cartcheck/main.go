package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	internalcli "github.com/adyen/cartcheck/internal/cli"
	"github.com/adyen/cartcheck/internal/config"
	"github.com/adyen/cartcheck/internal/obs"
	"github.com/adyen/cartcheck/internal/scenario"
)

var version = "0.1.0"

// app carries what every command needs once the environment is loaded
type app struct {
	getenv  func(string) string
	logger  zerolog.Logger
	metrics *obs.Metrics
}

var productFlag = &cli.StringSliceFlag{
	Name:     "product",
	Aliases:  []string{"p"},
	Usage:    "product name to add to the cart, repeatable",
	Required: true,
}

var categoryFlag = &cli.StringFlag{
	Name:    "category",
	Aliases: []string{"c"},
	Usage:   "catalog category to open before each product, e.g. Laptops",
}

// VerifyCommand adds products and checks that the cart total equals the line item sum
func (a *app) VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Add products to a fresh cart and verify its total",
		Flags: []cli.Flag{productFlag, categoryFlag},
		Action: func(c *cli.Context) error {
			plan := scenario.Plan{Category: c.String("category"), Products: c.StringSlice("product")}
			return a.runPlan(c, plan)
		},
	}
}

// ScenarioCommand runs the full add, verify, delete and clear flow
func (a *app) ScenarioCommand() *cli.Command {
	return &cli.Command{
		Name:  "scenario",
		Usage: "Add products, verify, delete one by name, clear, verifying after every step",
		Flags: []cli.Flag{
			productFlag,
			categoryFlag,
			&cli.StringFlag{Name: "delete", Aliases: []string{"d"}, Usage: "product name to delete after the first verification"},
			&cli.BoolFlag{Name: "clear", Usage: "clear the cart at the end and verify it is empty"},
		},
		Action: func(c *cli.Context) error {
			plan := scenario.Plan{
				Category: c.String("category"),
				Products: c.StringSlice("product"),
				Delete:   c.String("delete"),
				Clear:    c.Bool("clear"),
			}
			return a.runPlan(c, plan)
		},
	}
}

// ClearCommand fills a cart and clears it again
func (a *app) ClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Add products, then delete every line item and verify the empty cart",
		Flags: []cli.Flag{productFlag, categoryFlag},
		Action: func(c *cli.Context) error {
			plan := scenario.Plan{Category: c.String("category"), Products: c.StringSlice("product"), Clear: true}
			return a.runPlan(c, plan)
		},
	}
}

// DemoStoreCommand serves the local demo storefront
func (a *app) DemoStoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo-store",
		Usage: "Serve the demo storefront used by the end-to-end tests",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadServerConfig(a.getenv)
			if err != nil {
				return fmt.Errorf("invalid server configuration: %w", err)
			}
			deps, err := internalcli.NewStoreDependencies(cfg, a.logger)
			if err != nil {
				return fmt.Errorf("failed to build demo storefront: %w", err)
			}
			deps.Gatherer = a.metrics.Gatherer()
			return internalcli.RunServe(deps)
		},
	}
}

// HistoryCommand lists recent runs from Postgres
func (a *app) HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent check runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of runs to show"},
		},
		Action: func(c *cli.Context) error {
			return a.printHistory(c)
		},
	}
}

func newApp(dotenvLoaded bool) *cli.App {
	a := &app{}
	return &cli.App{
		Name:    "cartcheck",
		Usage:   "Verify that storefront cart totals match their line items",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "storefront to test, overrides CARTCHECK_BASE_URL"},
			&cli.PathFlag{Name: "metrics-file", Usage: "write Prometheus metrics to this file when the command ends"},
		},
		Before: func(c *cli.Context) error {
			getenv, err := config.Environment()
			if err != nil {
				return err
			}
			a.getenv = getenv
			logCfg := config.LoadLoggingConfig(getenv)
			a.logger = obs.NewLogger(logCfg.Format, logCfg.Level)
			a.metrics = obs.NewMetrics("cartcheck")
			if !dotenvLoaded {
				a.logger.Debug().Msg(".env file not found, using environment variables")
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if path := c.Path("metrics-file"); path != "" && a.metrics != nil {
				return a.metrics.WriteTextfile(path)
			}
			return nil
		},
		Commands: []*cli.Command{
			a.VerifyCommand(),
			a.ScenarioCommand(),
			a.ClearCommand(),
			a.DemoStoreCommand(),
			a.HistoryCommand(),
		},
	}
}

func main() {
	app := newApp(godotenv.Load() == nil)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

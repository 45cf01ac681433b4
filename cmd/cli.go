package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"raffler/application"
	"raffler/config"
	"raffler/database"
	"raffler/domain/entities"
	"raffler/domain/interfaces"

	"github.com/urfave/cli"
)

const configKey = "config"

// operator is the caller used for CLI commands; the CLI runs with full access
var operator = entities.Caller{Subject: "cli", Role: entities.RoleAdmin}

// NewApp builds the raffler command line. ctx is cancelled on shutdown signals.
func NewApp(ctx context.Context, out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "raffler"
	app.Usage = "raffle settlement and commission engine"
	app.Writer = out

	app.Before = func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := ConfigureLogging(cfg); err != nil {
			return err
		}
		c.App.Metadata = map[string]interface{}{configKey: cfg}
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "run the HTTP API and background workers",
			Action: func(c *cli.Context) error {
				return Run(ctx, configFrom(c))
			},
		},
		{
			Name:  "migrate",
			Usage: "apply or inspect database migrations",
			Subcommands: []cli.Command{
				{
					Name:  "up",
					Usage: "apply all pending migrations",
					Action: func(c *cli.Context) error {
						return database.MigrateUp(MigrationTarget(configFrom(c)))
					},
				},
				{
					Name:      "down",
					Usage:     "roll back migrations",
					ArgsUsage: "[steps]",
					Action: func(c *cli.Context) error {
						steps := 1
						if arg := c.Args().First(); arg != "" {
							n, err := strconv.Atoi(arg)
							if err != nil {
								return fmt.Errorf("invalid steps %q: %w", arg, err)
							}
							steps = n
						}
						return database.MigrateDown(MigrationTarget(configFrom(c)), steps)
					},
				},
				{
					Name:  "status",
					Usage: "show the current migration version",
					Action: func(c *cli.Context) error {
						status, err := database.MigrateStatus(MigrationTarget(configFrom(c)))
						if err != nil {
							return err
						}
						if !status.Applied {
							fmt.Fprintln(c.App.Writer, "no migrations applied")
							return nil
						}
						fmt.Fprintf(c.App.Writer, "version %d (dirty: %t)\n", status.Version, status.Dirty)
						return nil
					},
				},
			},
		},
		{
			Name:  "settle",
			Usage: "enter winning numbers and settle a draw",
			Flags: []cli.Flag{
				cli.Int64Flag{Name: "draw", Usage: "draw id"},
				cli.StringFlag{Name: "p1", Usage: "first prize, 4 digits"},
				cli.StringFlag{Name: "p2", Usage: "second prize, 2 or 4 digits"},
				cli.StringFlag{Name: "p3", Usage: "third prize, 2 or 4 digits"},
				cli.BoolFlag{Name: "recompute", Usage: "re-settle a finalized draw"},
			},
			Action: withDeps(ctx, func(deps *Deps, c *cli.Context) error {
				numbers := entities.WinningNumbers{First: c.String("p1"), Second: c.String("p2"), Third: c.String("p3")}
				result, err := deps.SettlementHandler().SettleDraw(ctx, c.Int64("draw"), numbers,
					interfaces.SettleOptions{Recompute: c.Bool("recompute")})
				if err != nil {
					return err
				}
				printSettlement(c.App.Writer, result)
				return nil
			}),
		},
		{
			Name:  "report",
			Usage: "print the commission report",
			Flags: []cli.Flag{
				cli.Int64Flag{Name: "seller", Usage: "restrict to one seller"},
				cli.Int64Flag{Name: "draw", Usage: "restrict to one draw"},
			},
			Action: withDeps(ctx, func(deps *Deps, c *cli.Context) error {
				rows, err := application.NewReportHandler(deps.UoWFactory).CommissionReport(ctx, operator,
					optionalID(c, "seller"), optionalID(c, "draw"))
				if err != nil {
					return err
				}
				printReport(c.App.Writer, rows)
				return nil
			}),
		},
		{
			Name:  "rules",
			Usage: "list the available rule sets",
			Action: func(c *cli.Context) error {
				cfg := configFrom(c)
				registry, err := LoadRules(cfg)
				if err != nil {
					return err
				}
				for _, id := range registry.IDs() {
					marker := " "
					if id == cfg.RuleSet {
						marker = "*"
					}
					fmt.Fprintf(c.App.Writer, "%s %s\n", marker, id)
				}
				return nil
			},
		},
		{
			Name:  "draw",
			Usage: "manage draws",
			Subcommands: []cli.Command{
				{
					Name:  "create",
					Usage: "schedule a new draw",
					Flags: []cli.Flag{
						cli.StringFlag{Name: "at", Usage: "scheduled time, RFC 3339"},
					},
					Action: withDeps(ctx, func(deps *Deps, c *cli.Context) error {
						at, err := time.Parse(time.RFC3339, c.String("at"))
						if err != nil {
							return fmt.Errorf("invalid --at: %w", err)
						}
						draw, err := application.NewDrawHandler(deps.UoWFactory).CreateDraw(ctx, at)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "draw %d scheduled at %s\n", draw.ID, draw.ScheduledAt.Format(time.RFC3339))
						return nil
					}),
				},
			},
		},
	}

	return app
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Get()
}

func withDeps(ctx context.Context, action func(deps *Deps, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		deps, err := Build(ctx, configFrom(c))
		if err != nil {
			return err
		}
		defer deps.Close()
		return action(deps, c)
	}
}

func optionalID(c *cli.Context, name string) *int64 {
	if !c.IsSet(name) {
		return nil
	}
	id := c.Int64(name)
	return &id
}

func printSettlement(out io.Writer, result *interfaces.SettlementResult) {
	fmt.Fprintf(out, "draw %d settled with %s: %d winners, payout %s\n",
		result.DrawID, result.RuleSet, result.WinnersWritten(), result.TotalPayout)
	if result.Recomputed {
		fmt.Fprintf(out, "replaced %d previous winner records\n", result.Replaced)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SELLER\tCLIENT\tNUMBER\tTIER\tQTY\tUNIT\tPAYOUT")
	for _, winner := range result.Winners {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%s\t%s\n",
			winner.SellerID, winner.ClientID, winner.Number, winner.Tier, winner.Quantity, winner.UnitAmount, winner.TotalPayout)
	}
	w.Flush()
}

func printReport(out io.Writer, rows []*entities.CommissionReportRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DRAW\tDATE\tSELLER\tGROSS\tWINNINGS\tPCT\tCOMMISSION\tBALANCE")
	for _, row := range rows {
		pct := row.CommissionPercent.String() + "%"
		if row.CommissionMissing {
			pct = "n/a"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.DrawID, row.DrawScheduledAt.Format("2006-01-02 15:04"), row.SellerName,
			row.GrossSales, row.TotalWinnings, pct, row.CommissionAmount, row.Balance)
	}
	w.Flush()
}

// Main runs the command line and returns the process exit code
func Main(ctx context.Context, args []string) int {
	if err := NewApp(ctx, os.Stdout).Run(args); err != nil {
		fmt.Fprintln(os.Stderr, "raffler:", err)
		return 1
	}
	return 0
}

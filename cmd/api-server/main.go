package main

import (
	"Reconcile/config"
	"Reconcile/models"
	"Reconcile/pkg/database"
	"Reconcile/pkg/log"
	"Reconcile/pkg/server"
	"Reconcile/pkg/snowflake"
	"Reconcile/service"
	"Reconcile/types"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	cliApp := &cli.App{
		Name:  "api-server",
		Usage: "payment reconciliation service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   fmt.Sprintf("configs/config.%s.yaml", env),
				Usage:   "config file path",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http server",
				Action: func(ctx *cli.Context) error {
					cfg := load(ctx)
					app, cleanup, err := InitServer(cfg)
					if err != nil {
						return err
					}
					defer cleanup()
					return server.Run(ctx, app)
				},
			},
			{
				Name:  "batch-sync",
				Usage: "sync payment records in a date range with gateways",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Required: true, Usage: "2024-01-01 or RFC3339"},
					&cli.StringFlag{Name: "end", Required: true, Usage: "2024-01-31 or RFC3339"},
					&cli.StringFlag{Name: "method", Value: "all", Usage: "alipay|wechat|bank|all"},
					&cli.StringFlag{Name: "status", Value: "all", Usage: "pending|completed|failed|refunded|all"},
				},
				Action: batchSync,
			},
			{
				Name:  "recover-refunds",
				Usage: "resolve refunds left in flight by a previous run",
				Action: func(ctx *cli.Context) error {
					jobs, cleanup, err := InitJobs(load(ctx))
					if err != nil {
						return err
					}
					defer cleanup()

					res, err := jobs.RefundService.RecoverInFlight(ctx.Context)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:  "migrate",
				Usage: "create or update tables",
				Action: func(ctx *cli.Context) error {
					cfg := load(ctx)
					db, err := database.NewDB(cfg)
					if err != nil {
						return err
					}
					return database.Migrate(db)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("failed to run command", zap.Error(err))
	}
}

func load(ctx *cli.Context) *config.Config {
	cfg := config.New(ctx.String("config"))
	log.Setup(cfg.Log)
	if err := snowflake.SetNode(cfg.App.Node); err != nil {
		log.L.Fatal("init snowflake node failed", zap.Error(err))
	}
	return cfg
}

func batchSync(ctx *cli.Context) error {
	jobs, cleanup, err := InitJobs(load(ctx))
	if err != nil {
		return err
	}
	defer cleanup()

	rng, err := service.ParseRange(ctx.String("start"), ctx.String("end"), jobs.ReportService.Location())
	if err != nil {
		return err
	}
	method, err := service.NormalizeMethod(ctx.String("method"))
	if err != nil {
		return err
	}

	req := &types.BatchSyncRequest{Range: rng, Method: method}
	if s := strings.ToLower(ctx.String("status")); s != "" && s != "all" {
		status := models.PayStatus(s)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", s)
		}
		req.Status = status
	}

	res, err := jobs.SyncService.Run(ctx.Context, req)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

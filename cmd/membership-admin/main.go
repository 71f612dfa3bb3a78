package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mutuelle-membership/internal/app"
	"mutuelle-membership/internal/config"
	"mutuelle-membership/internal/logger"
)

const usage = `Usage: membership-admin [-config path] <command> [flags]

Commands:
  record-payment       record a payment on a request
  request-corrections  send a request back to the applicant for corrections
  verify-code          check an applicant's security code
  submit-corrections   apply corrections sent with a security code
  renew-code           issue a new security code for a request under review
  approve              approve a paid request and create the member account
  reject               reject a request
  stats                print request statistics
  show                 print one request with its ledger entries
  notifications        list admin notifications (list) or mark one read (mark-read)
`

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the JSON result only
	logger.InitializeWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	cli := &commands{
		payments:      a.Payments,
		corrections:   a.Corrections,
		approvals:     a.Approvals,
		notifications: a.Notifications,
		requests:      a.Store.RequestRepository,
		ledger:        a.Store.LedgerRepository,
		out:           os.Stdout,
	}
	if err := cli.run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		a.Close()
		os.Exit(exitCode(err))
	}
}

// Command reportctl runs the report pipelines once and exits. It is
// the operational escape hatch for a missed scheduled run: the in-
// process scheduler does not backfill, so an operator reruns the
// cadence by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"latecomer/internal/config"
	"latecomer/internal/dispatch"
	"latecomer/internal/logger"
	"latecomer/internal/mailer"
	"latecomer/internal/report"
	"latecomer/internal/store"
)

func main() {
	cadence := flag.String("cadence", "daily", "pipeline to run: daily, weekly, monthly or all")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.MailConfigured() {
		log.Fatal("SMTP not configured, set SMTP_USER and SMTP_PASS")
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	sender := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	})
	dispatcher := dispatch.New(report.NewAggregator(db.Client), sender, dispatch.Recipients{
		HOD:       cfg.HODEmails,
		Principal: cfg.PrincipalEmail,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var results []dispatch.Result
	switch *cadence {
	case "daily":
		results = append(results, dispatcher.Daily(ctx))
	case "weekly":
		results = append(results, dispatcher.Weekly(ctx))
	case "monthly":
		results = append(results, dispatcher.Monthly(ctx))
	case "all":
		results = append(results,
			dispatcher.Daily(ctx),
			dispatcher.Weekly(ctx),
			dispatcher.Monthly(ctx))
	default:
		log.Fatal("unknown cadence", zap.String("cadence", *cadence))
	}

	failed := false
	for _, res := range results {
		if res.OK() {
			log.Info("pipeline completed", zap.String("cadence", res.Cadence), zap.Int("sent", res.Sent))
			continue
		}
		failed = true
		log.Error("pipeline had failures",
			zap.String("cadence", res.Cadence),
			zap.Int("sent", res.Sent),
			zap.Strings("failed", res.Failed),
			zap.String("error", res.Err))
	}
	if failed {
		os.Exit(1)
	}
}

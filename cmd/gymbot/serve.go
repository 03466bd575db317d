// ABOUTME: CLI command that runs the Telegram bot.
// ABOUTME: Wires engine, gateway, reminders, backups and the metrics server.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/harperreed/gymbot/internal/backup"
	"github.com/harperreed/gymbot/internal/config"
	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/reminder"
	"github.com/harperreed/gymbot/internal/report"
	"github.com/harperreed/gymbot/internal/session"
	"github.com/harperreed/gymbot/internal/telegram"
	"github.com/harperreed/gymbot/internal/telemetry"
)

var errNoToken = errors.New("telegram token is required (telegram.token or GYMBOT_TELEGRAM_TOKEN)")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Run the bot: long-poll Telegram for updates, drive workout conversations
and send the daily reminder.

SETTINGS:

  telegram.token              Bot token (GYMBOT_TELEGRAM_TOKEN, TELEGRAM_BOT_TOKEN)
  session.ttl_minutes         Idle conversations are dropped after this long
  reminder.hour_utc/minute    Daily reminder time in UTC
  metrics.listen              Serve /metrics and /healthz on this address
  backup.s3_bucket            Also upload /history exports to this bucket

The bot stops cleanly on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Telegram.Token == "" {
			return errNoToken
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return err
	}
	text, err := i18n.Load()
	if err != nil {
		return err
	}

	contexts := session.NewContextStore(cfg.SessionTTL(), cfg.CleanupInterval())
	engine := session.New(db, cat, text, contexts)
	reporter := report.New(db, text)

	var gwOpts []telegram.GatewayOption
	if cfg.Backup.Enabled() {
		uploader, err := backup.New(ctx, backupConfig(cfg))
		if err != nil {
			return err
		}
		gwOpts = append(gwOpts, telegram.WithUploader(uploader))
		log.WithField("bucket", uploader.Bucket()).Info("history uploads enabled")
	}
	gw := telegram.NewGateway(engine, db, reporter, text, cat, gwOpts...)

	bot, err := telegram.NewBot(telegram.Options{
		Token:           cfg.Telegram.Token,
		LongPollTimeout: cfg.LongPollTimeout(),
	}, gw, text)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var scheduler *reminder.Scheduler
	if cfg.Reminder.Enabled {
		scheduler = reminder.New(db, bot, text, cfg.Reminder.HourUTC, cfg.Reminder.MinuteUTC)
		go scheduler.Start(ctx)
	}

	var metricsErr chan error
	if cfg.Metrics.Listen != "" {
		metricsErr = make(chan error, 1)
		go func() {
			metricsErr <- telemetry.Serve(ctx, cfg.Metrics.Listen, db.Ping)
		}()
	}

	runErr := bot.Run(ctx)
	cancel()

	if scheduler != nil {
		scheduler.Wait()
	}
	errs := runErr
	if metricsErr != nil {
		errs = multierr.Append(errs, <-metricsErr)
	}
	log.Info("gymbot stopped")
	return errs
}

func backupConfig(cfg *config.Config) backup.Config {
	return backup.Config{
		Bucket:    cfg.Backup.S3Bucket,
		Region:    cfg.Backup.S3Region,
		Endpoint:  cfg.Backup.S3Endpoint,
		PathStyle: cfg.Backup.S3PathStyle,
		Prefix:    cfg.Backup.Prefix,
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/gatherly/vitals/pkg/aggregator"
	"github.com/gatherly/vitals/pkg/alert"
	"github.com/gatherly/vitals/pkg/api"
	"github.com/gatherly/vitals/pkg/config"
	"github.com/gatherly/vitals/pkg/export"
	"github.com/gatherly/vitals/pkg/log"
	"github.com/gatherly/vitals/pkg/monitor"
	"github.com/gatherly/vitals/pkg/notify"
	"github.com/gatherly/vitals/pkg/probe"
	"github.com/gatherly/vitals/pkg/reqmetrics"
	"github.com/gatherly/vitals/pkg/status"
	"github.com/gatherly/vitals/pkg/store"
	"github.com/gatherly/vitals/pkg/sysmetrics"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring server",
	Long: `Start the Vitals HTTP server and background loops.

The server probes the configured dependencies on demand, evaluates
alerting thresholds every check interval, and keeps serving health
endpoints even when every dependency is down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return runServe(cfg)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	checkCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

// buildProbes assembles the dependency probes. Both probes are always
// present: their clients dial lazily, so a dependency that is down at
// startup shows up as an unhealthy service, never as a missing one.
func buildProbes(cfg *config.Config, db *store.DB) ([]probe.Prober, *probe.DatabaseProber, error) {
	storageClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
		Region: cfg.Storage.Region,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("object storage client: %w", err)
	}

	dbProbe := probe.NewDatabaseProber(db.Pool(), cfg.Probes.Database.Latency(), cfg.Probes.Timeout.Std())
	storageProbe := probe.NewObjectStorageProber(storageClient, cfg.Storage.Bucket, cfg.Probes.Storage.Latency(), cfg.Probes.Timeout.Std())

	return []probe.Prober{dbProbe, storageProbe}, dbProbe, nil
}

func runServe(cfg *config.Config) error {
	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})
	logger := log.WithComponent("main")
	logger.Info().Str("version", Version).Msg("vitals starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The pool dials lazily; an error here means the URL itself is broken.
	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	// Advisory startup check. A down database is not fatal: the probe
	// reports it unhealthy and the migration retries on first anomaly.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.Pool().Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("database unreachable at startup, probe will report unhealthy until it returns")
	} else if err := db.Migrate(ctx); err != nil {
		logger.Warn().Err(err).Msg("anomaly table migration failed")
	}
	pingCancel()

	probes, dbProbe, err := buildProbes(cfg, db)
	if err != nil {
		return err
	}

	sys, err := sysmetrics.New(cfg.System.TotalMemoryBytes, cfg.System.DiskPath)
	if err != nil {
		return fmt.Errorf("self metrics collector: %w", err)
	}

	thresholds := alert.DefaultThresholds()
	recorder := reqmetrics.NewRecorder()
	agg := aggregator.New(probes, sys, recorder, dbProbe, thresholds.SelfCheckBounds())

	dispatcher := alert.NewDispatcher(alert.DefaultCooldowns(), buildChannels(cfg.Channels), alert.NewHistory(), db)

	mon := monitor.New(agg, thresholds, dispatcher, recorder,
		cfg.Alerting.CheckInterval.Std(), cfg.Alerting.CleanupInterval.Std())
	mon.Start(ctx)

	server := api.NewServer(agg, thresholds, dispatcher, export.New(), recorder, db, Version)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server failed")
		mon.Stop()
		return err
	}

	mon.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown incomplete")
	}

	logger.Info().Msg("vitals stopped")
	return nil
}

// buildChannels assembles the notification fan-out from the config.
// The log channel is always present so info alerts have a destination.
func buildChannels(cfg config.Channels) []notify.Channel {
	channels := []notify.Channel{notify.NewLogChannel()}
	if cfg.WebhookURL != "" {
		channels = append(channels, notify.NewWebhookChannel("webhook", cfg.WebhookURL))
	}
	if cfg.EmailGatewayURL != "" {
		channels = append(channels, notify.NewEmailChannel(cfg.EmailGatewayURL, cfg.EmailRecipients))
	}
	if cfg.SMSGatewayURL != "" {
		channels = append(channels, notify.NewSMSChannel(cfg.SMSGatewayURL, cfg.SMSRecipients))
	}
	return channels
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one health snapshot and print it",
	Long: `Probe every dependency once, print the aggregated snapshot as JSON,
and exit non-zero when the overall status is unhealthy. Useful from cron
jobs and CI pipelines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return runCheck(cfg)
	},
}

func runCheck(cfg *config.Config) error {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	probes, dbProbe, err := buildProbes(cfg, db)
	if err != nil {
		return err
	}

	sys, err := sysmetrics.New(cfg.System.TotalMemoryBytes, cfg.System.DiskPath)
	if err != nil {
		return err
	}

	thresholds := alert.DefaultThresholds()
	snap := aggregator.New(probes, sys, reqmetrics.NewRecorder(), dbProbe, thresholds.SelfCheckBounds()).Snapshot(ctx)

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if snap.Status == status.Unhealthy {
		return fmt.Errorf("system is unhealthy")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqzls/waterwatch/internal/coordinator"
	"github.com/sqzls/waterwatch/internal/logging"
	"github.com/sqzls/waterwatch/internal/publisher"
	"github.com/sqzls/waterwatch/internal/server"
	"github.com/sqzls/waterwatch/pkg/models"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the polling daemon",
	Long: `Polls the utility API on the configured interval and publishes each fresh
summary to Home Assistant over MQTT and to the local HTTP status endpoint.
The first refresh must succeed; after that, failed cycles keep the last
known summary in place until the next tick.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.HouseID == "" {
		return fmt.Errorf("no house_id configured in %s", getConfigPath())
	}

	log := logging.NewLogger(cfg)
	interval := time.Duration(cfg.GetUpdateInterval()) * time.Second

	coord := coordinator.New(newClient(cfg), cfg.HouseID, interval, log)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// The daemon refuses to start without an initial summary, like the
	// integration's first refresh.
	if _, err := coord.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}
	log.Info().Str("house_id", cfg.HouseID).Dur("interval", interval).Msg("initial refresh complete")

	if cfg.MQTT.Enabled {
		pub, err := publisher.New(cfg.MQTT, cfg.HouseID, log)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer pub.Close()

		if err := pub.PublishDiscovery(); err != nil {
			return fmt.Errorf("publishing discovery configs: %w", err)
		}
		if err := pub.PublishSummary(coord.Data()); err != nil {
			return fmt.Errorf("publishing initial summary: %w", err)
		}

		coord.Subscribe(func(s *models.UsageSummary) {
			if err := pub.PublishSummary(s); err != nil {
				log.Error().Err(err).Msg("publishing summary")
			}
		})
	}

	if cfg.Server.Enabled {
		srv := &http.Server{
			Addr:    cfg.Server.GetListen(),
			Handler: server.New(coord, log).Handler(),
		}
		go func() {
			log.Info().Str("listen", srv.Addr).Msg("status server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("status server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	sched := coordinator.NewCronScheduler()
	defer sched.Stop()

	stop, err := coord.Start(sched)
	if err != nil {
		return fmt.Errorf("starting coordinator: %w", err)
	}
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/config"
	"github.com/mamadbah2/motofleet/internal/mqtt"
	"github.com/mamadbah2/motofleet/internal/simulator"
	"github.com/mamadbah2/motofleet/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		ids     string
		freq    time.Duration
		seed    int64
		verbose bool
	)

	cmd := &cobra.Command{
		Use:           "simulator",
		Short:         "Publish simulated moto telemetry over MQTT",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadSimulator(envFile)
			if err != nil {
				return fmt.Errorf("load simulator config: %w", err)
			}
			if ids != "" {
				cfg.MotoIDs = splitIDs(ids)
			}
			if freq > 0 {
				cfg.Interval = freq
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			level := "info"
			if verbose {
				level = "debug"
			}
			log := logger.Must(logger.New(level))
			defer func() { _ = log.Sync() }()

			client, err := mqtt.Connect(cfg.MQTT, logger.Named(log, "mqtt"))
			if err != nil {
				return err
			}
			defer client.Close()

			fleet := simulator.NewFleet(cfg.MotoIDs, client, cfg.Interval, nil, seed, logger.Named(log, "simulator"))
			if err := client.Subscribe(cmd.Context(), []string{simulator.CommandTopic}, fleet.HandleCommand); err != nil {
				return err
			}

			log.Info("simulator started",
				zap.Strings("moto_ids", cfg.MotoIDs),
				zap.Duration("interval", cfg.Interval),
				zap.String("broker", cfg.MQTT.BrokerURL),
			)
			err = fleet.Run(cmd.Context())
			log.Info("simulator stopped")
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file with the broker settings")
	flags.StringVar(&ids, "ids", "", "comma separated moto ids (overrides SIM_MOTO_IDS)")
	flags.DurationVar(&freq, "freq", 0, "publish interval (overrides SIM_INTERVAL)")
	flags.Int64Var(&seed, "seed", 0, "random seed; 0 picks one from the clock")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every published reading")
	return cmd
}

func splitIDs(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

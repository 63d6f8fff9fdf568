package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/avtomat-labs/go-fieldbus/config"
	"github.com/avtomat-labs/go-fieldbus/health"
	"github.com/avtomat-labs/go-fieldbus/logger"
	"github.com/avtomat-labs/go-fieldbus/pnrpc"
	"github.com/avtomat-labs/go-fieldbus/session"
	"github.com/avtomat-labs/go-fieldbus/strategy"
)

func newRunCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the controller against the configured devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("config validation failed: %w", err)
			}
			config.Normalize(cfg)

			logger.SetLevel(logger.ParseLevel(cfg.Controller.LogLevel))
			log := logger.GetLogger()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runController(ctx, cfg, log)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "fieldbus.yaml", "controller configuration file")

	return cmd
}

// runController starts one session per configured device and blocks until the
// context ends or a session fails unrecoverably.
func runController(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	monitor := health.NewMonitor(
		health.WithLogger(log),
	)

	hints := strategy.DefaultHints()
	for _, h := range cfg.Controller.Hints {
		hints.Register(h.VendorID, h.StrategyIndex)
	}

	group, ctx := errgroup.WithContext(ctx)

	for _, dev := range cfg.Controller.Devices {
		dev := dev
		sess, transport, err := newDeviceSession(dev, cfg.Controller.Health, monitor, hints, log)
		if err != nil {
			return err
		}

		group.Go(func() error {
			defer transport.Close()

			log.Info("session starting", "station", dev.Station, "endpoint", dev.Endpoint)
			err := sess.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("session %s: %w", dev.Station, err)
		})
	}

	return group.Wait()
}

func newDeviceSession(
	dev config.DeviceConfig,
	healthCfg config.HealthConfig,
	monitor *health.Monitor,
	hints *strategy.HintRegistry,
	log logger.Logger,
) (*session.Session, session.Transport, error) {
	transport, err := dialUDP(dev.Endpoint)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.ConfigOption{
		session.WithVendorID(dev.VendorID),
		session.WithFrameIDs(dev.InputFrameID, dev.OutputFrameID),
		session.WithPoints(dev.SensorPoints, dev.ActuatorPoints),
		session.WithSlots(dev.Slots...),
		session.WithHintRegistry(hints),
		session.WithHealthMonitor(monitor),
		session.WithLogger(log.With("station", dev.Station)),
	}
	if dev.TimingProfile != "" {
		id, err := strategy.ParseProfile(dev.TimingProfile)
		if err != nil {
			transport.Close()
			return nil, nil, err
		}
		opts = append(opts, session.WithStrategyTable(strategy.BuildTable(
			[]uint16{pnrpc.OpConnect},
			[]*strategy.TimingProfile{strategy.ProfileByID(id)},
		)))
	}
	if dev.ConnectTimeoutMs > 0 {
		opts = append(opts, session.WithConnectTimeout(dev.ConnectTimeout()))
	}
	if dev.RetryBackoffMs > 0 {
		opts = append(opts, session.WithRetryBackoff(dev.RetryBackoff()))
	}
	if dev.DecodeErrorLimit > 0 {
		opts = append(opts, session.WithDecodeErrorLimit(dev.DecodeErrorLimit))
	}

	cfg, err := session.NewConfig(dev.Station, opts...)
	if err != nil {
		transport.Close()
		return nil, nil, err
	}

	monitor.Register(cfg.ComponentID(),
		health.WithFailureThreshold(healthCfg.FailureThreshold),
		health.WithRecoveryTimeout(healthCfg.RecoveryTimeout()),
	)

	sess, err := session.NewSession(cfg, transport)
	if err != nil {
		transport.Close()
		return nil, nil, err
	}

	return sess, transport, nil
}

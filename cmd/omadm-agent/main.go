// Command omadm-agent is the long-running OMA-DM agent process: it exposes
// an HTTP endpoint that receives Package 0 server-initiated triggers and
// drives sessions to completion against the configured accounts.
//
// This is a supplemented feature layered entirely outside the session
// core, which never defines a transport binding of its own — see
// internal/agent for the listener this command wraps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oma-dm/goclient/internal/agent"
	"github.com/oma-dm/goclient/internal/dmconfig"
	"github.com/oma-dm/goclient/internal/logger"
	"github.com/oma-dm/goclient/internal/telemetry"
	"github.com/oma-dm/goclient/pkg/metrics"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	port    int
)

var rootCmd = &cobra.Command{
	Use:   "omadm-agent",
	Short: "Long-running OMA-DM trigger listener and session driver",
	Long: `omadm-agent loads a device/account configuration, then listens for
Package 0 server-initiated triggers over HTTP. Each trigger starts a
session against the account that sent it and drives the full
composepacket/transmit/processreply conversation to completion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./omadm.yaml)")
	rootCmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: 8290)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("omadm-agent %s (commit %s, built %s)\n", version, commit, date)
		},
	})
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := dmconfig.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "omadm-agent",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "omadm-agent",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "path", "/metrics")
	}

	agentCfg := agent.Config{}
	if port != 0 {
		agentCfg.Port = port
	}

	srv := agent.NewServer(agentCfg, cfg)

	logger.Info("omadm-agent starting",
		"version", version, "port", srv.Port(), "accounts", len(cfg.Accounts))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(ctx)
	}()

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("agent shutdown error", "error", err)
			return err
		}
	case err := <-serverDone:
		if err != nil {
			logger.Error("agent error", "error", err)
			return err
		}
	}

	logger.Info("omadm-agent stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

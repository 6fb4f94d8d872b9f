package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/scribe-dev/scribe/internal/admin"
	"github.com/scribe-dev/scribe/internal/config"
	"github.com/scribe-dev/scribe/internal/errors"
	"github.com/scribe-dev/scribe/pkg/agent"
	"github.com/scribe-dev/scribe/pkg/archive"
	"github.com/scribe-dev/scribe/pkg/metrics"
	"github.com/scribe-dev/scribe/pkg/offload"
	"github.com/scribe-dev/scribe/pkg/transport"
)

// shutdownTimeout bounds how long the daemon waits for HTTP servers to
// drain on shutdown.
const shutdownTimeout = 5 * time.Second

func runCmd() *cobra.Command {
	var (
		configPath  string
		controlAddr string
		adminAddr   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the archive control daemon",
		Long: `Start the archive control daemon.

Control clients connect over WebSocket at ws://<control>/control. The
admin API and Prometheus metrics are served on the admin address. Both
addresses come from scribe.json and can be overridden with flags.

Examples:
  scribed run
  scribed run --config /etc/scribe/scribe.json
  scribed run --control localhost:9010 --admin localhost:9020`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(configPath, controlAddr, adminAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to scribe.json (default: search upward from the working directory)")
	cmd.Flags().StringVar(&controlAddr, "control", "", "Control listen address override (host:port)")
	cmd.Flags().StringVar(&adminAddr, "admin", "", "Admin listen address override (host:port)")

	return cmd
}

func runDaemon(configPath, controlAddr, adminAddr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := applyAddressOverride(&cfg.Control.Host, &cfg.Control.Port, controlAddr); err != nil {
		return err
	}
	if err := applyAddressOverride(&cfg.Admin.Host, &cfg.Admin.Port, adminAddr); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	secret, err := cfg.SecretBytes()
	if err != nil {
		return err
	}
	authenticator := archive.AllowAll()
	if secret != nil {
		authenticator = archive.StaticCredentials(secret)
	} else {
		logger.Warn("authentication disabled, control sessions are open to any client")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))

	backend := archive.NewLoggingBackend(logger)
	conductor := archive.NewConductor(backend, logger,
		archive.WithMetrics(m),
		archive.WithAuthenticator(authenticator),
		archive.WithMaxSessions(cfg.Control.MaxSessions),
		archive.WithSessionTimeout(cfg.SessionTimeout()),
	)

	adminOpts := []admin.Option{
		admin.WithName(cfg.Name),
		admin.WithVersion(version),
		admin.WithGatherer(reg),
	}
	if cfg.OffloadEnabled() {
		store, err := offload.NewFSStore(cfg.OffloadPath(), logger, offload.WithMetrics(m))
		if err != nil {
			return errors.New("E122").
				WithDetail("Could not open offload directory " + cfg.OffloadPath()).
				Wrap(err)
		}
		adminOpts = append(adminOpts, admin.WithSegmentStore(store))
		logger.Info("segment offload enabled", "dir", cfg.OffloadPath())
	}

	listener := transport.NewListener(func(conn *transport.WSConn) {
		conductor.OnControlConnection(conn, conn)
	}, transport.ConnConfig{}, logger)

	controlMux := http.NewServeMux()
	controlMux.Handle("/control", listener)
	controlServer := &http.Server{Handler: controlMux}

	adminServer := &http.Server{
		Handler: admin.New(conductor, logger, adminOpts...).Handler(),
	}

	controlLn, err := net.Listen("tcp", cfg.ControlAddress())
	if err != nil {
		return errors.New("E120").
			WithDetail("Could not bind " + cfg.ControlAddress()).
			Wrap(err)
	}
	adminLn, err := net.Listen("tcp", cfg.AdminAddress())
	if err != nil {
		controlLn.Close()
		return errors.New("E121").
			WithDetail("Could not bind " + cfg.AdminAddress()).
			Wrap(err)
	}

	printBanner()
	info("control  ws://%s/control", cfg.ControlAddress())
	info("admin    http://%s", cfg.AdminAddress())

	logger.Info("archive starting",
		"name", cfg.Name,
		"version", version,
		"max_sessions", cfg.Control.MaxSessions,
		"session_timeout", cfg.SessionTimeout())

	runner := agent.NewRunner(conductor, idleStrategyFor(cfg.Control.IdleStrategy), nil, logger)
	runner.Start()

	errCh := make(chan error, 2)
	go func() {
		if err := controlServer.Serve(controlLn); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		if err := adminServer.Serve(adminLn); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting control connections first, then drain the conductor
	// (which tears down live sessions), and take the admin surface down
	// last so operators can watch the shutdown.
	if err := controlServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("control server shutdown", "error", err)
	}
	runner.Close()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown", "error", err)
	}

	logger.Info("archive stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadFromWorkingDir()
}

// applyAddressOverride splits a host:port flag into config fields. A
// host-less form like ":8010" keeps the configured host.
func applyAddressOverride(host *string, port *int, addr string) error {
	if addr == "" {
		return nil
	}
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.Newf(errors.CategoryCLI, "invalid address %q: %v", addr, err)
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return errors.Newf(errors.CategoryCLI, "invalid port in address %q", addr)
	}
	if h != "" {
		*host = h
	}
	*port = n
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler).With("archive", cfg.Name)
}

func idleStrategyFor(name string) agent.IdleStrategy {
	switch name {
	case "busyspin":
		return agent.BusySpinIdleStrategy{}
	case "yielding":
		return agent.YieldingIdleStrategy{}
	case "sleeping":
		return agent.SleepingIdleStrategy{Period: time.Millisecond}
	default:
		return agent.NewBackoffIdleStrategy(100*time.Microsecond, 10*time.Millisecond)
	}
}

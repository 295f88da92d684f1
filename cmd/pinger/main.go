package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/pinger/internal/config"
	"github.com/hamed0406/pinger/internal/httpapi"
	"github.com/hamed0406/pinger/internal/logging"
	"github.com/hamed0406/pinger/internal/probe"
	"github.com/hamed0406/pinger/internal/registry"
	"github.com/hamed0406/pinger/internal/repo/logfile"
	"github.com/hamed0406/pinger/internal/repo/memory"
	"github.com/hamed0406/pinger/internal/scheduler"
)

type flags struct {
	addr      string
	logDir    string
	endpoints string
	interval  time.Duration
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	var f flags
	c := &cobra.Command{
		Use:           "pinger",
		Short:         "Probe HTTP(S) endpoints and serve their status and logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := applyFlags(cmd, config.FromEnv(), f)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	c.Flags().StringVar(&f.addr, "addr", "", "API bind address (overrides API_ADDR / PINGER_PORT)")
	c.Flags().StringVar(&f.logDir, "log-dir", "", "log directory (overrides LOG_DIR)")
	c.Flags().StringVar(&f.endpoints, "endpoints", "", "registry file, .yaml/.toml/.json (overrides ENDPOINTS_FILE)")
	c.Flags().DurationVar(&f.interval, "interval", 0, "time between probe cycles (overrides PROBE_INTERVAL_MS)")
	c.Flags().DurationVar(&f.timeout, "timeout", 0, "per-probe timeout (overrides PROBE_TIMEOUT_MS)")
	return c
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, cfg config.Config, f flags) config.Config {
	set := cmd.Flags().Changed
	if set("addr") && f.addr != "" {
		cfg.Addr = f.addr
	}
	if set("log-dir") && f.logDir != "" {
		cfg.LogDir = f.logDir
	}
	if set("endpoints") {
		cfg.EndpointsFile = f.endpoints
	}
	if set("interval") && f.interval > 0 {
		cfg.Interval = f.interval
	}
	if set("timeout") && f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	return cfg
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := logging.NewLogger(cfg.LogDir, logging.PingerLogName, logging.Options{
		Console: cfg.LogConsole,
		Level:   zapcore.InfoLevel,
	})
	if err != nil {
		return fmt.Errorf("operational logger: %w", err)
	}
	defer logger.Sync()

	accessLog, err := logging.NewLogger(cfg.LogDir, logging.AppLogName, logging.Options{Level: zapcore.InfoLevel})
	if err != nil {
		return fmt.Errorf("access logger: %w", err)
	}
	defer accessLog.Sync()

	reg := registry.Default()
	if cfg.EndpointsFile != "" {
		if reg, err = registry.Load(cfg.EndpointsFile); err != nil {
			logger.Error("registry_invalid", zap.String("file", cfg.EndpointsFile), zap.Error(err))
			return err
		}
	}
	endpoints := reg.Endpoints()

	states := memory.New(endpoints)
	records := logfile.New(cfg.LogDir, cfg.MaxLogBytes, logger)

	sched := scheduler.NewScheduler(logger, endpoints, probe.NewHTTPChecker(cfg.Timeout),
		states, records, cfg.Interval, cfg.Timeout, cfg.Concurrency)
	if cfg.DNSDiagnostics {
		sched.Diagnoser = probe.NewDNSDiagnoser()
	}

	api := httpapi.NewServer(logger, states, cfg.LogDir, httpapi.Options{
		AccessLog:      accessLog,
		RateLimitRPM:   cfg.RateLimitRPM,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("pinger_starting",
		zap.String("addr", cfg.Addr),
		zap.String("log_dir", cfg.LogDir),
		zap.Int("endpoints", len(endpoints)),
		zap.Duration("interval", cfg.Interval),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int64("max_log_bytes", cfg.MaxLogBytes),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("api_shutdown_error", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		logger.Error("pinger_stopped", zap.Error(err))
		return err
	}
	logger.Info("pinger_stopped")
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "pinger:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KilimcininKorOglu/ldapfixture/internal/config"
	"github.com/KilimcininKorOglu/ldapfixture/internal/logging"
	"github.com/KilimcininKorOglu/ldapfixture/internal/metrics"
	"github.com/KilimcininKorOglu/ldapfixture/internal/server"
)

const metricsShutdownTimeout = 5 * time.Second

type serveOptions struct {
	address        string
	metricsAddress string
	logLevel       string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the LDAP fixture server",
		Long: `Start the LDAP fixture server and, when enabled, the Prometheus
metrics endpoint. The server stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configFile)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("address") {
				cfg.Server.Address = opts.address
			}
			if flags.Changed("metrics-address") {
				cfg.Metrics.Address = opts.metricsAddress
				cfg.Metrics.Enabled = true
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = opts.logLevel
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, flags.Changed("log-level"))
		},
	}

	cmd.Flags().StringVar(&opts.address, "address", config.DefaultAddress, "LDAP listen address")
	cmd.Flags().StringVar(&opts.metricsAddress, "metrics-address", config.DefaultMetricsAddress, "enable metrics and listen on this address")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// runServe runs the LDAP server and the optional metrics server until ctx
// is cancelled or either fails. levelPinned keeps config reloads from
// changing a log level given on the command line.
func runServe(ctx context.Context, cfg *config.Config, levelPinned bool) error {
	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}

	source := cfg.Source()
	if source == "" {
		source = "defaults"
	}
	logger.Info("ldapfixture starting",
		"version", version,
		"config", source,
		"log_level", cfg.Logging.Level)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	srv := server.NewServer(cfg.Server, server.Options{
		Logger:  logger.WithFields("component", "ldap"),
		Metrics: m,
	})

	if cfg.Source() != "" {
		watcher, err := config.NewConfigWatcher(&config.WatcherConfig{
			FilePath: cfg.Source(),
			OnChange: func(oldCfg, newCfg *config.Config) {
				applyReload(logger, oldCfg, newCfg, levelPinned)
			},
			OnError: func(err error) {
				logger.Warn("config reload failed", "error", err.Error())
			},
		})
		if err != nil {
			logger.Warn("config watch disabled", "error", err.Error())
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.ListenAndServe(gctx)
		if errors.Is(err, server.ErrServerClosed) {
			return nil
		}
		return err
	})

	if cfg.Metrics.Enabled {
		httpSrv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           metrics.NewRouter(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("metrics server listening", "address", cfg.Metrics.Address)
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if err != nil {
		logger.Error("server error", "error", err.Error())
		return err
	}
	logger.Info("ldapfixture stopped")
	return nil
}

// applyReload applies the parts of a changed configuration that can take
// effect without a restart.
func applyReload(logger logging.Logger, oldCfg, newCfg *config.Config, levelPinned bool) {
	if !levelPinned && oldCfg.Logging.Level != newCfg.Logging.Level {
		if ls, ok := logger.(logging.LevelSetter); ok {
			ls.SetLevel(newCfg.Logging.Level)
			logger.Info("log level changed",
				"from", oldCfg.Logging.Level,
				"to", newCfg.Logging.Level)
		}
	}

	if oldCfg.Server != newCfg.Server || oldCfg.Metrics != newCfg.Metrics ||
		oldCfg.Logging.Format != newCfg.Logging.Format || oldCfg.Logging.Output != newCfg.Logging.Output {
		logger.Warn("configuration changed; restart to apply server, metrics and log output settings")
	}
}

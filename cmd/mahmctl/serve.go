package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/mahmkit/internal/config"
	"github.com/joshuapare/mahmkit/monitor"
	"github.com/joshuapare/mahmkit/pkg/exporter"
)

const shutdownTimeout = 10 * time.Second

var (
	serveListen      string
	serveMinInterval time.Duration
)

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot as Prometheus metrics",
		Long: `The serve command exposes the segment on /metrics. Each scrape refreshes
the segment, at most once per --min-interval. /healthz reports whether the
server is up, independent of the source.

Example:
  mahmctl serve
  mahmctl serve --listen 127.0.0.1:9785 --min-interval 2s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				cfg.Exporter.Listen = serveListen
			}
			if cmd.Flags().Changed("min-interval") {
				cfg.Exporter.MinInterval = config.Duration(serveMinInterval)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}

	cmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, :9785)")
	cmd.Flags().DurationVar(&serveMinInterval, "min-interval", time.Second, "Minimum time between segment refreshes")

	return cmd
}

func runServe(ctx context.Context) error {
	m, err := openMonitor()
	if err != nil {
		return err
	}
	defer m.Close()

	srv := &http.Server{
		Addr:              cfg.Exporter.Listen,
		Handler:           newMetricsHandler(m, time.Duration(cfg.Exporter.MinInterval)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("serving metrics",
		slog.String("listen", srv.Addr),
		slog.Duration("min_interval", time.Duration(cfg.Exporter.MinInterval)),
		slog.String("segment", cfg.Segment.Name),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// newMetricsHandler wires the exporter and process collectors into a
// private registry.
func newMetricsHandler(m *monitor.Monitor, minInterval time.Duration) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		exporter.New(m, exporter.Options{MinInterval: minInterval, Logger: logger}),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

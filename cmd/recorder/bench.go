package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/recorder"
	"github.com/poiesic/recorder/backend"
	"github.com/poiesic/recorder/loadgen"
	"github.com/poiesic/recorder/metrics"
	"github.com/poiesic/recorder/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func benchCommand(c *cli.Context) error {
	cfg, err := backendConfig(c)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector, err := metrics.NewCollector(reg, "bench")
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	if addr := c.String("metrics-addr"); addr != "" {
		stop := serveMetrics(addr, reg)
		defer stop()
	}

	gen, err := loadgen.NewGenerator(
		loadgen.WithProducers(c.Int("producers")),
		loadgen.WithRecordsPerProducer(c.Int("per-producer")),
		loadgen.WithLogger(slog.Default().With("component", "loadgen")),
	)
	if err != nil {
		return err
	}
	defer gen.Release()

	s := startSession(c, cfg, recorder.WithMonitor(collector))

	// Entries already in the storage are left out of the order check.
	existing, err := s.rec.Records(c.Context, storage.All())
	if err != nil {
		return errors.Join(fmt.Errorf("reading existing entries: %w", err), s.finish(c, nil))
	}
	offset := len(existing)

	res, runErr := gen.Run(c.Context, s.rec)
	backlog := s.rec.Backlog()

	var stored int
	err = s.finish(c, func(st backend.EntryStorage) error {
		entries := st.Load(context.Background(), storage.Range{Start: offset, End: storage.All().End})
		stored = len(entries)
		_, err := loadgen.CheckOrder(entries)
		return err
	})
	if err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("load generation stopped: %w", runErr)
	}
	if int64(stored) != res.Saved {
		return fmt.Errorf("saved %d entries but %d were stored", res.Saved, stored)
	}

	fmt.Fprintf(c.App.Writer, "producers=%d saved=%d elapsed=%s rate=%.0f/s backlog-at-end=%d\n",
		gen.Producers(), res.Saved, res.Elapsed.Round(time.Millisecond), res.Rate(), backlog)
	return nil
}

// serveMetrics exposes /metrics on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics endpoint failed", "addr", addr, "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

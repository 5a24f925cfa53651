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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	apphttp "github.com/amakane-hakari/weakcache/internal/api/http"
	"github.com/amakane-hakari/weakcache/internal/config"
	ilog "github.com/amakane-hakari/weakcache/internal/log"
	"github.com/amakane-hakari/weakcache/internal/metrics"
	"github.com/amakane-hakari/weakcache/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := ilog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := ilog.New(
		ilog.WithLevel(level),
		ilog.WithFormat(ilog.Format(cfg.LogFormat)),
		ilog.WithAttrs(slog.String("service", "weakcache")),
	)

	var mx metrics.Interface = metrics.Noop{}
	var routerOpts []apphttp.RouterOption
	if cfg.MetricsEnabled {
		mx = metrics.NewProm(cfg.MetricsNamespace, nil)
		routerOpts = append(routerOpts, apphttp.WithMetricsHandler(promhttp.Handler()))
	}
	routerOpts = append(routerOpts, apphttp.WithAccessLog(logger))

	opts := []store.Option{
		store.WithShards(cfg.Shards),
		store.WithCleanupInterval(cfg.CleanupInterval),
		store.WithLogger(logger.With("component", "store")),
		store.WithMetrics(mx),
	}
	if cfg.PrimitivesAlwaysHard {
		opts = append(opts, store.WithPrimitivesAlwaysHard())
	}
	if cfg.ShardPadding {
		opts = append(opts, store.WithShardPadding())
	}
	st := store.New[string, string](opts...)
	// タイマーを止めないとゴルーチンが残る
	defer st.Release()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apphttp.NewRouter(st, routerOpts...),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server.start", "addr", cfg.HTTPAddr, "cleanup_interval", cfg.CleanupInterval.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server.shutdown", "size", st.Size())
		apphttp.SetDraining(true)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server.error", "error", err)
		return err
	}
	logger.Info("server.stopped")
	return nil
}

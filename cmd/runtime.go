package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spectralml/webbook-crawler/internal/config"
	"github.com/spectralml/webbook-crawler/internal/crawl"
	"github.com/spectralml/webbook-crawler/internal/fetch"
	"github.com/spectralml/webbook-crawler/internal/gate"
	"github.com/spectralml/webbook-crawler/internal/logging"
	"github.com/spectralml/webbook-crawler/internal/progress"
)

// runtime bundles the wired services a subcommand needs. It is built fresh
// per invocation so commands never share state.
type runtime struct {
	cfg        config.Config
	logger     *zap.Logger
	crawler    *crawl.Crawler
	emitter    *progress.Fanout
	metricsSrv *http.Server
}

// buildRuntime loads configuration and wires the gate, fetcher, sinks, and
// crawler together.
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	client, err := fetch.NewColly(fetch.Config{
		BaseURL:   cfg.Catalog.BaseURL,
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	g := gate.New(cfg.Catalog.Concurrency, gate.WithRate(cfg.Catalog.RequestsPerSecond, 1))
	gated := fetch.NewGated(client, g)

	sinks := []progress.Sink{progress.NewLogSink(logger)}

	var metricsSrv *http.Server
	if cfg.Metrics.ListenAddr != "" {
		promSink, err := progress.NewPrometheusSink(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("init prometheus sink: %w", err)
		}
		sinks = append(sinks, promSink)
		metricsSrv = &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if serveErr := metricsSrv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				logger.Warn("metrics server stopped", zap.Error(serveErr))
			}
		}()
	}

	emitter := progress.NewFanout(sinks...)
	crawler := crawl.New(gated,
		crawl.WithEmitter(emitter),
		crawl.WithLogger(logger),
		crawl.WithMaxIterations(cfg.Catalog.MaxIterations),
	)

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		crawler:    crawler,
		emitter:    emitter,
		metricsSrv: metricsSrv,
	}, nil
}

// close shuts the sinks and metrics endpoint down gracefully.
func (rt *runtime) close(ctx context.Context) {
	if rt.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rt.metricsSrv.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}
	if err := rt.emitter.Close(ctx); err != nil {
		rt.logger.Warn("close progress sinks", zap.Error(err))
	}
	syncLogger(rt.logger)
}

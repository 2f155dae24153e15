package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/timecode/internal/api"
	"github.com/zsiec/timecode/internal/cache"
	"github.com/zsiec/timecode/internal/config"
	"github.com/zsiec/timecode/internal/logger"
	"github.com/zsiec/timecode/internal/metrics"
	"github.com/zsiec/timecode/internal/server"
	"github.com/zsiec/timecode/pkg/timecode"
	"github.com/zsiec/timecode/pkg/version"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file (defaults and TIMECODE_* environment when empty)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	base, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Service(base)

	log.WithField("version", version.GetInfo().Short()).Info("Starting timecode service")
	log.WithField("config_path", configPath).Debug("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *redis.Client
	responseCache := cache.Cache(cache.Nop{})
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		log.Info("Connected to Redis successfully")

		if cfg.Cache.Enabled {
			responseCache = cache.NewRedisCache(redisClient, cfg.Cache, log)
			log.WithFields(logrus.Fields{
				"ttl":    cfg.Cache.TTL,
				"prefix": cfg.Cache.Prefix,
			}).Info("Response cache enabled")
		}
	}

	if cfg.Metrics.Enabled {
		go startMetricsServer(ctx, cfg.Metrics, logger.WithComponent(base, "metrics"))
	}

	srv := server.New(&cfg.Server, log, redisClient)
	handlers := api.NewHandlers(cfg.Timecode, responseCache, advisorySink(cfg.Timecode, base),
		srv.ErrorHandler(), logger.NewLogrusAdapter(log))
	srv.RegisterRoutes(handlers.RegisterRoutes)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("Server error")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis connection")
		}
	}

	log.Info("Server shutdown complete")
}

// advisorySink counts every advisory and, when enabled, logs it through a
// sampled logger so batch requests cannot flood the log.
func advisorySink(cfg config.TimecodeConfig, base *logrus.Logger) timecode.Sink {
	sinks := []timecode.Sink{metrics.AdvisorySink()}
	if cfg.LogAdvisories {
		advisoryLog := logger.NewAdvisoryLogger(logger.NewLogrusAdapter(logger.WithComponent(base, "advisory")))
		sinks = append(sinks, advisoryLog.AdvisorySink())
	}
	return timecode.MultiSink(sinks...)
}

// startMetricsServer serves Prometheus metrics until ctx is cancelled.
func startMetricsServer(ctx context.Context, cfg config.MetricsConfig, log *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	metricsServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("Starting metrics server")
	if err := metricsServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("Metrics server error")
	}
}

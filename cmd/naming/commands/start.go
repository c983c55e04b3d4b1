package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/latticefs/lattice/internal/logger"
	"github.com/latticefs/lattice/internal/naming/api"
	"github.com/latticefs/lattice/internal/naming/config"
	"github.com/latticefs/lattice/internal/naming/ledger"
	"github.com/latticefs/lattice/internal/naming/registry"
	"github.com/latticefs/lattice/internal/naming/replicate"
	"github.com/latticefs/lattice/internal/naming/service"
	"github.com/latticefs/lattice/internal/naming/storageclient"
	"github.com/latticefs/lattice/internal/telemetry"
)

func runStart(cmd *cobra.Command, args []string) error {
	servicePort, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid service_port %q: %w", args[0], err)
	}
	registrationPort, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid registration_port %q: %w", args[1], err)
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ServicePort = servicePort
	cfg.RegistrationPort = registrationPort

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "lattice-naming",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "lattice-naming",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("init profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	reg := registry.New()
	led := ledger.New()
	client := storageclient.New(30 * time.Second)
	metrics := replicate.NewMetrics(prometheus.DefaultRegisterer)
	replicaCfg := replicate.Config{
		Threshold: cfg.Replication.Threshold,
		QueueSize: cfg.Replication.QueueDepth,
		Workers:   cfg.Replication.Workers,
	}
	engine := replicate.NewEngine(client, reg, led, metrics, replicaCfg)
	engine.Start(ctx)
	defer engine.Stop(cfg.ShutdownTimeout)

	svc := service.New(client, reg, led, engine)

	registrationSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.RegistrationPort),
		Handler: api.NewRegistrationRouter(svc),
	}
	serviceSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServicePort),
		Handler: api.NewServiceRouter(svc),
	}

	serveErr := make(chan error, 2)
	go func() { serveErr <- registrationSrv.ListenAndServe() }()
	go func() { serveErr <- serviceSrv.ListenAndServe() }()

	logger.Info("naming service listening",
		"service_port", cfg.ServicePort,
		"registration_port", cfg.RegistrationPort)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	_ = registrationSrv.Shutdown(shutdownCtx)
	_ = serviceSrv.Shutdown(shutdownCtx)

	return nil
}

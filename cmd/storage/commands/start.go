package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/latticefs/lattice/internal/logger"
	"github.com/latticefs/lattice/internal/storage"
	"github.com/latticefs/lattice/internal/storage/api"
	"github.com/latticefs/lattice/internal/storage/config"
	"github.com/latticefs/lattice/internal/telemetry"
)

func runStart(cmd *cobra.Command, args []string) error {
	clientPort, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid client_port %q: %w", args[0], err)
	}
	commandPort, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid command_port %q: %w", args[1], err)
	}
	registrationPort, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid registration_port %q: %w", args[2], err)
	}
	rootDir := args[3]

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ClientPort = clientPort
	cfg.CommandPort = commandPort
	cfg.RegistrationPort = registrationPort
	cfg.RootDir = rootDir

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
		ServiceName:    "lattice-storage",
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
		ServiceName:    "lattice-storage",
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

	node, err := storage.NewNode(storage.Config{
		RootDir:     cfg.RootDir,
		IndexDir:    cfg.IndexDir,
		StorageIP:   cfg.StorageIP,
		ClientPort:  cfg.ClientPort,
		CommandPort: cfg.CommandPort,
	})
	if err != nil {
		return fmt.Errorf("open storage node: %w", err)
	}
	defer func() { _ = node.Close() }()

	clientSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ClientPort),
		Handler: api.NewClientRouter(node),
	}
	commandSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.CommandPort),
		Handler: api.NewCommandRouter(node),
	}

	serveErr := make(chan error, 2)
	go func() { serveErr <- clientSrv.ListenAndServe() }()
	go func() { serveErr <- commandSrv.ListenAndServe() }()

	registrationClient := storage.NewRegistrationClient(cfg.NamingIP, cfg.RegistrationPort, 0)
	go func() {
		duplicates, err := node.RegisterWithRetry(ctx, registrationClient)
		if err != nil {
			logger.Error("registration with naming service failed permanently", "error", err)
			return
		}
		logger.Info("registered with naming service", "duplicates", len(duplicates))
	}()

	logger.Info("storage node listening",
		"client_port", cfg.ClientPort,
		"command_port", cfg.CommandPort,
		"root_dir", cfg.RootDir)

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
	_ = clientSrv.Shutdown(shutdownCtx)
	_ = commandSrv.Shutdown(shutdownCtx)

	return nil
}

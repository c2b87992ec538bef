// Package main is the entry point for curod, the Curo remediation daemon.
// It loads configuration, assembles the sampler, decider, executor, and
// audit log, and runs the remediation loop until the process receives a
// shutdown signal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/curo-sh/curo/internal/audit"
	"github.com/curo-sh/curo/internal/autostart"
	"github.com/curo-sh/curo/internal/collector"
	"github.com/curo-sh/curo/internal/config"
	"github.com/curo-sh/curo/internal/daemon"
	"github.com/curo-sh/curo/internal/decision"
	"github.com/curo-sh/curo/internal/executor"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "curo.yaml", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Show version and exit")
	install     = flag.Bool("install", false, "Install curod as a system service and exit")
	uninstall   = flag.Bool("uninstall", false, "Remove the curod system service and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("curod %s\n", version)
		os.Exit(0)
	}

	if *install || *uninstall {
		if err := manageService(*install); err != nil {
			fmt.Fprintf(os.Stderr, "Service management failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting curod",
		zap.String("version", version),
		zap.String("decision_mode", cfg.Decision.Mode))

	// Invalid configuration is the only fatal condition. Everything past
	// this point degrades and keeps the loop alive instead of exiting.
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	runDaemon(ctx, cfg, logger)
	logger.Info("Daemon stopped")
}

// runDaemon assembles all components and runs the remediation loop.
// It blocks until the context is cancelled.
func runDaemon(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	auditLog, err := audit.Open(cfg.Daemon.AuditLog, logger)
	if err != nil {
		logger.Fatal("Failed to open audit log", zap.Error(err))
	}
	defer auditLog.Close()

	sampler := collector.NewSampler(cfg.Collector.DiskPath, logger)
	exec := executor.New(cfg.Actions, logger)
	decider := buildDecider(ctx, cfg, logger)

	d := daemon.New(sampler, decider, exec, auditLog, cfg.Daemon.Interval.Duration, logger)
	d.Run(ctx)
}

// buildDecider selects the decision stage for the configured mode. In remote
// mode it optionally waits for the decision service to report healthy; an
// unready service is logged and tolerated, since the loop handles
// unavailability on every cycle anyway.
func buildDecider(ctx context.Context, cfg *config.Config, logger *zap.Logger) decision.Decider {
	if cfg.Decision.Mode != config.ModeRemote {
		return decision.NewEngine(cfg.Thresholds)
	}

	if cfg.Decision.WaitReady {
		if err := decision.WaitReady(ctx, cfg.Decision.URL, cfg.Decision.ReadyTimeout.Duration, logger); err != nil {
			logger.Warn("Decision service not ready, starting anyway", zap.Error(err))
		}
	}
	return decision.NewClient(cfg.Decision, logger)
}

// manageService installs or removes the OS service for the daemon.
func manageService(installing bool) error {
	mgr := autostart.New()

	if installing {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving executable path: %w", err)
		}
		if err := mgr.Install(execPath); err != nil {
			return err
		}
		fmt.Printf("Installed service %s\n", mgr.ServiceName())
		return nil
	}

	if err := mgr.Uninstall(); err != nil {
		return err
	}
	fmt.Printf("Removed service %s\n", mgr.ServiceName())
	return nil
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}

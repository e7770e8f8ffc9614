package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/config"
	"github.com/unpackhq/unpack/internal/core/engine"
	errwrap "github.com/unpackhq/unpack/internal/errors"
	"github.com/unpackhq/unpack/internal/metrics"
	"github.com/unpackhq/unpack/internal/observability"
	"github.com/unpackhq/unpack/internal/server"
	"github.com/unpackhq/unpack/internal/server/handlers"
	servermw "github.com/unpackhq/unpack/internal/server/middleware"
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simplification API",
	Long: `Start the HTTP API with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-read the config file and apply logging.level (other settings need a restart)

Set UNPACK_ADMIN_TOKEN to expose the signal control endpoint at /admin/signal.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return errwrap.WrapConfigInvalid(ctx, err, "invalid configuration")
	}

	identity := GetAppIdentity()
	namespace := identity.TelemetryNamespace()

	observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, namespace)
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(namespace, cfg.Metrics.Port); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.WrapInternal(ctx, err, "metrics initialization failed")
		}
		metrics.SetServerStartTime(time.Now().Unix())
	}

	pipe, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return errwrap.WrapConfigInvalid(ctx, err, "simplification pipeline setup failed")
	}

	defaultProvider := pipe.Dispatcher.DefaultProvider()
	if !pipe.Dispatcher.Providers.HasCredentials(defaultProvider) {
		logger.Warn("Default provider has no API key; requests will fail until one is set",
			zap.String("provider", defaultProvider.String()))
	}

	logger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("namespace", namespace),
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("provider", defaultProvider.String()),
		zap.Bool("cache", pipe.Store != nil),
		zap.Int("metrics_port", observability.GetMetricsPort()))

	health := handlers.NewHealthManager(versionInfo.Version)
	health.RegisterChecker("app_identity", identityHealthChecker{
		binaryName: identity.BinaryName,
		envPrefix:  identity.EnvPrefix,
		configName: identity.ConfigName,
	})
	health.RegisterChecker("provider_credentials", handlers.ProviderCredentialsChecker{
		Source:   pipe.Dispatcher.Providers,
		Provider: defaultProvider,
	})
	if cfg.Metrics.Enabled {
		health.RegisterChecker("telemetry", telemetryHealthChecker{})
	}
	if pipe.Store != nil {
		health.RegisterChecker("store", handlers.StoreChecker{Store: pipe.Store})
	}

	handlers.SetAppIdentity(identity)

	limiter := engine.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	limiter.StartSweeper(sweepCtx, cfg.RateLimit.SweepInterval, func(removed, tracked int) {
		metrics.SetRateLimitClients(tracked)
		if removed > 0 {
			logger.Debug("Swept rate limit records",
				zap.Int("removed", removed),
				zap.Int("tracked", tracked))
		}
	})

	srv := server.New(server.Options{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		Simplifier:  pipe.Simplifier,
		RateLimiter: limiter,
		Health:      health,
		CORS: servermw.CORSOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
		},
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		TrustProxy:   cfg.Server.TrustProxy,
		AdminToken:   os.Getenv(identity.EnvPrefix + "ADMIN_TOKEN"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	registerShutdownHandlers(cfg, srv, pipe, stopSweeper)
	registerReloadHandler()

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(ctx); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(ctx, err, "server error")
	}
	return nil
}

// registerShutdownHandlers runs in LIFO order: the HTTP server stops first,
// then the cache store and metrics, and the logger flushes last.
func registerShutdownHandlers(cfg *config.Config, srv *server.Server, pipe *pipeline, stopSweeper context.CancelFunc) {
	logger := observability.ServerLogger

	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			// stdout/stderr may already be closed
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		stopSweeper()
		if err := pipe.Close(); err != nil {
			logger.Warn("Failed to close cache store", zap.Error(err))
		}
		if err := observability.ShutdownMetrics(); err != nil {
			logger.Warn("Failed to stop metrics exporter", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}

		logger.Info("HTTP server stopped gracefully")
		return nil
	})
}

func registerReloadHandler() {
	logger := observability.ServerLogger

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: attempting config reload")

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				logger.Info("No config file found - using defaults and environment variables")
				return nil
			}
			logger.Error("Failed to reload config file",
				zap.String("file", viper.ConfigFileUsed()),
				zap.Error(err))
			return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
		}

		cfg, err := loadConfig()
		if err != nil {
			logger.Error("Reloaded config is invalid", zap.Error(err))
			return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
		}
		applyReloadedConfig(cfg)

		logger.Info("Configuration reloaded successfully",
			zap.String("file", viper.ConfigFileUsed()))
		return nil
	})
}

// applyReloadedConfig applies the settings that can change without a
// restart. Only the log level qualifies; listeners, limits and providers are
// bound at startup.
func applyReloadedConfig(cfg *config.Config) {
	severity := observability.SetServerLogLevel(cfg.Logging.Level)
	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Log level applied", zap.String("level", string(severity)))
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "server host")
	serveCmd.Flags().IntP("port", "p", 3000, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

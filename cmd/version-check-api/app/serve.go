package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	v1 "github.com/relicta-dev/version-check-api/internal/api/v1"
	"github.com/relicta-dev/version-check-api/internal/service"
	"github.com/relicta-dev/version-check-api/internal/telemetry"
	"github.com/relicta-dev/version-check-api/pkg/config"
	"github.com/relicta-dev/version-check-api/pkg/httpclient"
	"github.com/relicta-dev/version-check-api/pkg/logger"
	"github.com/relicta-dev/version-check-api/pkg/versions"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the version check API server",
	Long: `Start the version check API server.

Configuration comes from the environment (GITHUB_OWNER, GITHUB_REPO,
GITHUB_BRANCH, GITHUB_MANIFEST_PATH, GITHUB_TOKEN, CACHE_TTL_SECONDS) or an
optional YAML file (--config). Environment values override the file.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second // container-friendly shutdown time
	serverRequestTimeout   = 15 * time.Second // must cover one upstream fetch
	serverReadTimeout      = 10 * time.Second // enough for headers and small requests
	serverWriteTimeout     = 20 * time.Second // must be > serverRequestTimeout to let middleware handle timeout
	serverIdleTimeout      = 60 * time.Second // keep connections alive for reuse
)

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides config)")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, optional)")

	if err := viper.BindPFlag("flag-address", serveCmd.Flags().Lookup("address")); err != nil {
		logger.Fatalf("Failed to bind address flag: %v", err)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		logger.Fatalf("Failed to bind config flag: %v", err)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	if viper.GetBool("debug") {
		logger.Initialize(true)
	}

	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if addr := viper.GetString("flag-address"); addr != "" {
		cfg.Address = addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Infof("Starting version check API server on %s (manifest: %s/%s@%s/%s, ttl: %s)",
		cfg.Address, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch,
		cfg.GitHub.ManifestPath, cfg.CacheTTL())

	// Set up metrics
	buildInfo := versions.GetBuildInfo()
	telemetryProvider, err := telemetry.NewProvider("version-check-api", buildInfo.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Failed to shut down telemetry: %v", err)
		}
	}()

	manifestMetrics, err := telemetry.NewManifestMetrics(telemetryProvider.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create manifest metrics: %w", err)
	}
	httpMetrics, err := telemetry.NewHTTPMetrics(telemetryProvider.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	// Wire the upstream fetcher and the version cache
	provider := service.NewGitHubManifestProvider(
		httpclient.NewDefaultClient(cfg.FetchTimeout()),
		service.GitHubProviderConfig{
			Owner:        cfg.GitHub.Owner,
			Repo:         cfg.GitHub.Repo,
			Branch:       cfg.GitHub.Branch,
			ManifestPath: cfg.GitHub.ManifestPath,
			Token:        cfg.GitHub.Token,
		},
	)
	logger.Infof("Created manifest provider: %s", provider.GetSource())

	svc := service.NewService(provider,
		service.WithTTL(cfg.CacheTTL()),
		service.WithMetrics(manifestMetrics),
	)

	// Create the API server with middleware
	router := v1.NewServer(svc,
		v1.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
			httpMetrics.Middleware,
			v1.LoggingMiddleware,
		),
		v1.WithMetricsHandler(promhttp.HandlerFor(
			telemetryProvider.Registry(),
			promhttp.HandlerOpts{},
		)),
	)

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		logger.Infof("Server listening on %s", cfg.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logger.Info("Server shutdown complete")
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gadgetph/phone-catalog/internal/api/handlers"
	"github.com/gadgetph/phone-catalog/internal/api/middleware"
	"github.com/gadgetph/phone-catalog/internal/cache"
	"github.com/gadgetph/phone-catalog/internal/catalog"
	"github.com/gadgetph/phone-catalog/internal/config"
	"github.com/gadgetph/phone-catalog/internal/engine"
	"github.com/gadgetph/phone-catalog/internal/notify"
	"github.com/gadgetph/phone-catalog/internal/query"
	"github.com/gadgetph/phone-catalog/internal/store"
	"github.com/gadgetph/phone-catalog/internal/telemetry"
	"github.com/gadgetph/phone-catalog/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduled catalog refresh",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, log)
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error("telemetry shutdown failed", "error", err)
			}
		}()
	}

	source, err := store.NewPostgresSource(ctx, cfg.Database.DSN(), cfg.Database.PoolSize)
	if err != nil {
		return fmt.Errorf("connecting to product store: %w", err)
	}
	defer source.Close()

	snapshots, err := cache.Open(cfg.Catalog.CachePath, log)
	if err != nil {
		return fmt.Errorf("opening snapshot cache: %w", err)
	}
	defer snapshots.Close() //nolint:errcheck // badger close errors are not actionable here

	mapper := catalog.NewMapper(catalog.MapperConfig{
		RootSlug:           cfg.Catalog.RootSlug,
		PopularTag:         cfg.Catalog.PopularTag,
		ExcludedTitleWords: cfg.Catalog.ExcludedTitleWords,
	})

	var notifier notify.Notifier
	if cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	} else {
		notifier = notify.NewNoOpNotifier(log)
	}

	limiter := rate.NewLimiter(
		rate.Limit(cfg.Catalog.RateLimit.PerSecond),
		cfg.Catalog.RateLimit.Burst,
	)

	rebuilder := engine.NewRebuilder(source, mapper, snapshots, cfg.Catalog.CacheVersion,
		engine.WithLogger(log),
		engine.WithBatchSize(cfg.Catalog.BatchSize),
		engine.WithTTLs(cfg.Catalog.FullTTL, cfg.Catalog.BatchTTL),
		engine.WithRateLimiter(limiter),
		engine.WithNotifier(notifier),
	)

	scheduler, err := engine.NewScheduler(rebuilder, cfg.Schedule.RefreshInterval, log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := newServer(cfg, log, source, snapshots, rebuilder)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	scheduler.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		<-scheduler.Stop().Done()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

// newServer assembles the Echo instance: middleware, health probes, metrics,
// and the versioned Huma API.
func newServer(
	cfg *config.Config,
	log *slog.Logger,
	source catalog.Source,
	snapshots cache.Store,
	rebuilder *engine.Rebuilder,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(source)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Phone Catalog API", Version))

	version := cfg.Catalog.CacheVersion
	handlers.RegisterPhoneRoutes(api, handlers.NewPhonesHandler(snapshots, query.NewEngine(), version))
	handlers.RegisterViewRoutes(api, handlers.NewViewsHandler(snapshots, version))
	handlers.RegisterBrandRoutes(api, handlers.NewBrandsHandler(snapshots, version))
	handlers.RegisterRebuildRoutes(api, handlers.NewRebuildHandler(rebuilder, snapshots, version))

	return e
}

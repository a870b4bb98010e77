package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/storefront/internal/api"
	"github.com/Rrens/storefront/internal/api/handler"
	"github.com/Rrens/storefront/internal/broker"
	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/config"
	"github.com/Rrens/storefront/internal/logger"
	"github.com/Rrens/storefront/internal/metrics"
	"github.com/Rrens/storefront/internal/realtime"
	"github.com/Rrens/storefront/internal/repository/postgres"
	"github.com/Rrens/storefront/internal/repository/redis"
	"github.com/Rrens/storefront/internal/security"
	"github.com/Rrens/storefront/internal/service"
	"github.com/Rrens/storefront/internal/worker"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logFile, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("env", cfg.Env).
		Msg("Starting storefront API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Initialize database
	if cfg.Database.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.Database.DSN()); err != nil {
			return err
		}
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	pingers := map[string]handler.Pinger{"database": db}

	// Initialize Redis when any component needs it
	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		pingers["redis"] = redisClient
	}

	// Cache
	var store cache.Store
	if cfg.Cache.Driver == config.CacheDriverRedis {
		store = redis.NewCacheStore(redisClient, cfg.Cache.Namespace)
	} else {
		memory := cache.NewMemoryStore(0)
		defer memory.Close()
		store = memory
	}
	appCache := cache.New(store, cache.TTLs{
		Short:   cfg.Cache.ShortTTL,
		Catalog: cfg.Cache.CatalogTTL,
		Detail:  cfg.Cache.DetailTTL,
	}, collector)
	pingers["cache"] = appCache

	g, gctx := errgroup.WithContext(ctx)

	// Realtime fan-out
	hub := realtime.NewHub(cfg.Realtime.BufferSize, collector)
	var push realtime.Publisher = hub
	if cfg.Realtime.Driver == config.RealtimeDriverRedis {
		bus := redis.NewEventBus(redisClient, cfg.Realtime.Channel, hub)
		push = bus
		g.Go(func() error { return bus.Run(gctx) })
	}

	// Kafka integration events
	var events service.OrderEventPublisher = broker.Noop{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		events = broker.NewEventPublisher(producer, collector.RecordPublish)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publishing enabled")
	}

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	services := service.New(service.Repositories{
		Users:         postgres.NewUserRepository(db),
		Workspaces:    postgres.NewWorkspaceRepository(db),
		Invitations:   postgres.NewInvitationRepository(db),
		Categories:    postgres.NewCategoryRepository(db),
		Products:      postgres.NewProductRepository(db),
		Carts:         postgres.NewCartRepository(db),
		Orders:        postgres.NewOrderRepository(db),
		Bills:         postgres.NewBillRepository(db),
		Notifications: postgres.NewNotificationRepository(db),
		Dashboards:    postgres.NewDashboardRepository(db),
	}, appCache, jwtManager, push, events, service.Options{
		InvitationTTL: cfg.Auth.InvitationTTL,
	})

	deps := api.Dependencies{
		Services: services,
		JWT:      jwtManager,
		Cache:    appCache,
		Hub:      hub,
		Pingers:  pingers,
		Metrics:  collector,
		Gatherer: registry,
	}
	if cfg.Security.RateLimit.Enabled {
		deps.Limiter = redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	}

	// Background workers
	expiry := worker.NewInvitationExpiry(services.Invitations, collector, cfg.Workers.InvitationExpiryInterval)
	g.Go(func() error {
		expiry.Run(gctx)
		return nil
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	return g.Wait()
}

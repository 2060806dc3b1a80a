package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/extra/redisotel/v9"

	"github.com/televista/storefront-api/internal/cart"
	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/checkout"
	"github.com/televista/storefront-api/internal/common"
	"github.com/televista/storefront-api/internal/config"
	"github.com/televista/storefront-api/internal/health"
	"github.com/televista/storefront-api/internal/obs"
	"github.com/televista/storefront-api/internal/orders"
	"github.com/televista/storefront-api/internal/ratelimit"
	"github.com/televista/storefront-api/internal/resilience"
	"github.com/televista/storefront-api/internal/security"
	"github.com/televista/storefront-api/internal/wholesale"
)

type readiness struct {
	rdb     *redis.Client
	catalog catalog.Client
}

func (c readiness) PingRedis(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c readiness) PingUpstream(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.catalog.Ping(ctx)
}

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL")).With().
		Str("component", "api").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName: "storefront-api",
			Endpoint:    endpoint,
			Environment: cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("init tracer")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		logger.Warn().Err(err).Msg("redis tracing instrumentation")
	}
	defer rdb.Close()

	breaker := resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).
		WithTarget("upstream", &logger)
	outbound := &resilience.HTTPClient{
		Client:      &http.Client{Timeout: cfg.OutboundTimeout},
		Breaker:     breaker,
		BaseBackoff: cfg.RetryBase,
		MaxAttempts: cfg.RetryMaxAttempts,
		Jitter:      cfg.RetryJitterPercent,
		Timeout:     cfg.OutboundTimeout,
	}
	upstream := &catalog.RESTClient{
		BaseURL: cfg.UpstreamBaseURL,
		APIKey:  cfg.UpstreamAPIKey,
		HTTP:    outbound,
	}

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Client:       upstream,
		Cache:        catalog.NewCache(rdb, cfg.CatalogCacheTTL),
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog service")
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	})
	defer asynqClient.Close()

	statusStore := &orders.StatusStore{R: rdb, TTL: cfg.OrderStatusTTL}
	enqueuer := &orders.AsynqEnqueuer{Client: asynqClient, Store: statusStore}

	cartSvc := &cart.Service{R: rdb, Catalog: catalogSvc, TTL: cfg.CartTTL}
	checkoutSvc := &checkout.Service{Carts: cartSvc, Enqueuer: enqueuer, Currency: cfg.CurrencyCode}
	wholesaleSvc := &wholesale.Service{Catalog: catalogSvc, Enqueuer: enqueuer, Currency: cfg.CurrencyCode}

	httpMetrics := obs.NewHTTPMetrics("storefront", obs.ParseBucketsCSV(os.Getenv("METRICS_BUCKETS_MS")), nil)
	obs.MustRegisterDomainMetrics("storefront", nil)

	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: rdb, Prefix: "rl"},
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return common.ClientIP(r) },
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}
	idem := common.Idem{R: rdb, TTL: cfg.IdempotencyTTL}

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogSvc})
	cartHandler := cart.NewHandler(cartSvc, logger)
	checkoutHandler := checkout.NewHandler(checkoutSvc, logger)
	wholesaleHandler := wholesale.NewHandler(wholesaleSvc, logger)
	ordersHandler := &orders.Handler{Store: statusStore}
	healthHandler := health.Handler{Checker: readiness{rdb: rdb, catalog: upstream}}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(security.Headers{Enable: true}.Middleware)
	r.Use(security.BodyLimit{Max: 1 << 20}.Middleware)

	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.Products)
			r.Get("/{id}", catalogHandler.ProductDetail)
			r.With(limiter.Middleware).Get("/{id}/quote", catalogHandler.Quote)
		})
		r.Route("/carts", cartHandler.Routes)
		r.Route("/checkout", checkoutHandler.Routes(limiter.Middleware, idem.Middleware))
		r.Route("/wholesale", wholesaleHandler.Routes(limiter.Middleware, idem.Middleware))
		r.Route("/orders", ordersHandler.Routes)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

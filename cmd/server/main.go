package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "onboarding/internal/jwt_token"
	"onboarding/internal/onboarding/adapters/identity"
	"onboarding/internal/onboarding/adapters/inprocess"
	"onboarding/internal/onboarding/adapters/kafka"
	"onboarding/internal/onboarding/adapters/upload"
	"onboarding/internal/onboarding/documents"
	"onboarding/internal/onboarding/handler"
	onboardingmetrics "onboarding/internal/onboarding/metrics"
	"onboarding/internal/onboarding/ports"
	"onboarding/internal/onboarding/ratelimit"
	"onboarding/internal/onboarding/service"
	"onboarding/internal/onboarding/store"
	"onboarding/internal/platform/config"
	"onboarding/internal/platform/database"
	"onboarding/internal/platform/httpserver"
	"onboarding/internal/platform/logger"
	"onboarding/internal/platform/metrics"
	"onboarding/internal/platform/redis"
	"onboarding/internal/platform/tracing"
	"onboarding/pkg/platform/audit/publisher"
	auditmemory "onboarding/pkg/platform/audit/store/memory"
	"onboarding/pkg/platform/httputil"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("onboarding server stopped", "error", err)
		os.Exit(1)
	}
}

// maxFilesPerRequest bounds a document upload body together with the
// per-file size limit.
const maxFilesPerRequest = 5

// closer releases a resource on shutdown.
type closer func(ctx context.Context)

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i](shutdownCtx)
		}
	}()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	closers = append(closers, func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	})

	sessions, err := openStore(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}

	auditStore := auditmemory.NewInMemoryStore()
	auditPublisher := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(1024))
	closers = append(closers, func(context.Context) { auditPublisher.Close() })

	tokens := jwttoken.NewJWTService(cfg.SessionSigningKey, cfg.SessionIssuer, cfg.SessionAudience)
	identityOpts := []identity.Option{identity.WithLogger(log)}
	switch cfg.IdentityCallbackSecret {
	case "":
		log.Warn("IDENTITY_CALLBACK_SECRET not set, identity verdicts will be refused")
	case cfg.SessionSigningKey:
		return errors.New("IDENTITY_CALLBACK_SECRET must differ from SESSION_SIGNING_KEY")
	default:
		verdicts := jwttoken.NewJWTService(cfg.IdentityCallbackSecret, cfg.IdentityCallbackIssuer, cfg.SessionAudience)
		identityOpts = append(identityOpts, identity.WithCallbackVerifier(verdicts))
	}
	identityProvider := identity.New(tokens, cfg.IdentityProviderURL, identityOpts...)

	notifier, err := newNotifier(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}
	uploader, err := newUploader(cfg)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(onboardingmetrics.New()),
		service.WithAuditPublisher(auditPublisher),
		service.WithTracer(tp.Tracer()),
		service.WithUploader(uploader),
		service.WithNotifier(notifier),
		service.WithIdentityProvider(identityProvider),
		service.WithWalletProvisioner(inprocess.NewWalletProvisioner()),
		service.WithPolicies(documents.DefaultPolicies().WithMaxSize(cfg.Upload.MaxSizeBytes)),
		service.WithTransferConcurrency(cfg.Upload.MaxConcurrency),
		service.WithBcryptCost(cfg.BcryptCost),
		service.WithTokenTTL(cfg.SessionTTL),
	}
	if tx, ok := sessions.store.(service.Transaction); ok {
		opts = append(opts, service.WithTx(tx))
	}
	svc := service.New(sessions.store, tokens, opts...)

	limiter := ratelimit.NewLimiter(sessions.limits, map[ratelimit.Class]ratelimit.Rule{
		ratelimit.ClassSessionStart: {Limit: cfg.RateLimits.SessionStartLimit, Window: cfg.RateLimits.SessionStartWindow},
		ratelimit.ClassCodeResend:   {Limit: cfg.RateLimits.CodeResendLimit, Window: cfg.RateLimits.CodeResendWindow},
	}, log)

	h := handler.New(svc, identityProvider, tokens, log, metrics.New(),
		handler.WithUploadLimits(cfg.Upload.MaxMemoryBytes, cfg.Upload.MaxSizeBytes*maxFilesPerRequest),
		handler.WithRateLimits(ratelimit.NewMiddleware(limiter, log)),
	)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	h.Register(r)

	srv := httpserver.New(cfg.Addr, r)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting onboarding server", "addr", cfg.Addr, "session_store", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down onboarding server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// backend is the selected session store with its health check and the
// rate limit store sharing its infrastructure.
type backend struct {
	store  service.Store
	health func(context.Context) error
	limits ratelimit.Store
}

func openStore(ctx context.Context, cfg config.Server, log *slog.Logger, closers *[]closer) (*backend, error) {
	switch cfg.SessionStore {
	case "", "memory":
		return &backend{
			store:  store.NewInMemory(),
			health: func(context.Context) error { return nil },
			limits: ratelimit.NewInMemoryStore(),
		}, nil
	case "redis":
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("SESSION_STORE=redis requires REDIS_URL")
		}
		*closers = append(*closers, func(context.Context) {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", "error", err)
			}
		})
		return &backend{
			store:  store.NewRedis(client.Client, cfg.SessionTTL),
			health: client.Health,
			limits: ratelimit.NewRedisStore(client.Client),
		}, nil
	case "postgres":
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func(context.Context) { closeDB(db, log) })
		if err := store.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate session store: %w", err)
		}
		return &backend{
			store:  store.NewPostgres(db),
			health: db.PingContext,
			limits: ratelimit.NewInMemoryStore(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("failed to close database", "error", err)
	}
}

func newNotifier(ctx context.Context, cfg config.Server, log *slog.Logger, closers *[]closer) (ports.Notifier, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return inprocess.NewLogNotifier(log), nil
	}
	n, err := kafka.NewNotifier(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic, kafka.WithLogger(log))
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, func(context.Context) { n.Close() })
	if err := n.EnsureTopic(ctx, 3, 1); err != nil {
		log.Warn("could not ensure verification code topic", "topic", cfg.Kafka.NotifyTopic, "error", err)
	}
	return n, nil
}

func newUploader(cfg config.Server) (ports.ContentUploader, error) {
	if cfg.Upload.BaseURL == "" {
		return inprocess.NewMemoryUploader(), nil
	}
	return upload.NewHTTPUploader(cfg.Upload.BaseURL)
}

// Package service runs onboarding sessions on top of a session store. Each
// operation loads a session under its lock, applies one controller action,
// and saves the result.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"onboarding/internal/onboarding/documents"
	"onboarding/internal/onboarding/metrics"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	"onboarding/internal/onboarding/ports"
	"onboarding/pkg/attrs"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

// Store persists session snapshots.
type Store interface {
	Create(ctx context.Context, snap navigation.Snapshot) error
	Get(ctx context.Context, sessionID id.SessionID) (navigation.Snapshot, error)
	Save(ctx context.Context, snap navigation.Snapshot) error
}

// TokenIssuer signs the bearer token handed out when a session starts.
type TokenIssuer interface {
	GenerateSessionToken(sessionID id.SessionID, expiresIn time.Duration) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DefaultTokenTTL is the lifetime of a session token.
const DefaultTokenTTL = 24 * time.Hour

// Service orchestrates onboarding sessions.
type Service struct {
	store  Store
	tx     Transaction
	tokens TokenIssuer

	uploader ports.ContentUploader
	notifier ports.Notifier
	identity ports.IdentityProvider
	wallet   ports.WalletProvisioner

	policies      documents.Policies
	transferLimit int
	bcryptCost    int
	tokenTTL      time.Duration

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer

	advances singleflight.Group
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithTx replaces the in-process session lock, typically with the store
// itself when it can lock across replicas.
func WithTx(tx Transaction) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithUploader enables background content transfer. Without an uploader,
// accepted files are marked successful right away.
func WithUploader(u ports.ContentUploader) Option {
	return func(s *Service) {
		s.uploader = u
	}
}

func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithIdentityProvider(p ports.IdentityProvider) Option {
	return func(s *Service) {
		s.identity = p
	}
}

func WithWalletProvisioner(w ports.WalletProvisioner) Option {
	return func(s *Service) {
		s.wallet = w
	}
}

func WithPolicies(p documents.Policies) Option {
	return func(s *Service) {
		s.policies = p
	}
}

func WithTransferConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.transferLimit = n
		}
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// New constructs a Service. When an identity provider is configured the
// service registers itself for verification results.
func New(store Store, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:         store,
		tokens:        tokens,
		policies:      documents.DefaultPolicies(),
		transferLimit: documents.DefaultTransferConcurrency,
		tokenTTL:      DefaultTokenTTL,
		logger:        slog.Default(),
		tracer:        otel.Tracer("onboarding/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx(defaultTxTimeout)
	}
	if s.identity != nil {
		s.identity.OnVerificationComplete(s.completeIdentity)
	}
	return s
}

// controllerOptions wires collaborators into a controller for one request.
// Controller timestamps follow the request clock.
func (s *Service) controllerOptions(ctx context.Context, device models.Device) []navigation.Option {
	opts := []navigation.Option{
		navigation.WithLogger(s.logger),
		navigation.WithPolicies(s.policies),
		navigation.WithClock(func() time.Time { return requestcontext.Now(ctx) }),
		navigation.WithFailureHook(s.collaboratorFailed),
		navigation.WithDevice(device),
	}
	if s.bcryptCost > 0 {
		opts = append(opts, navigation.WithBcryptCost(s.bcryptCost))
	}
	if s.notifier != nil {
		opts = append(opts, navigation.WithNotifier(s.notifier))
	}
	if s.identity != nil {
		opts = append(opts, navigation.WithIdentityProvider(s.identity))
	}
	if s.wallet != nil {
		opts = append(opts, navigation.WithWalletProvisioner(s.wallet))
	}
	return opts
}

func (s *Service) load(ctx context.Context, sessionID id.SessionID) (*navigation.Controller, error) {
	snap, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, translateStoreError(err, "failed to load onboarding session")
	}
	c, err := navigation.Restore(snap, s.controllerOptions(ctx, snap.Device)...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored onboarding session is corrupt")
	}
	return c, nil
}

// mutate runs fn on the session under its lock and saves the session when
// fn succeeds. A failing fn leaves the stored session untouched.
func (s *Service) mutate(ctx context.Context, sessionID id.SessionID, fn func(ctx context.Context, c *navigation.Controller) error) (*navigation.Controller, error) {
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	var out *navigation.Controller
	err := s.tx.RunInTx(ctx, sessionID, func(ctx context.Context) error {
		c, err := s.load(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(ctx, c); err != nil {
			return err
		}
		if err := s.store.Save(ctx, c.Snapshot()); err != nil {
			return translateStoreError(err, "failed to save onboarding session")
		}
		out = c
		return nil
	})
	if err != nil {
		if _, ok := dErrors.As(err); !ok {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "onboarding session transaction failed")
		}
		return nil, err
	}
	return out, nil
}

// translateStoreError maps store sentinels onto domain errors. Errors that
// already carry a domain code pass through.
func translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "onboarding session not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "onboarding session already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) startSpan(ctx context.Context, name string, sessionID id.SessionID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "onboarding."+name,
		trace.WithAttributes(attribute.String("onboarding.session_id", sessionID.String())),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

// collaboratorFailed is the controller failure hook.
func (s *Service) collaboratorFailed(ctx context.Context, step models.StepID, err error) {
	if s.metrics != nil {
		s.metrics.IncCollaboratorFailure(string(step))
	}
	s.logAudit(ctx, audit.EventCollaboratorFailed,
		"session_id", requestcontext.SessionID(ctx),
		"step", string(step),
		"reason", err.Error(),
	)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	sessionID, _ := id.ParseSessionID(attrs.ExtractString(attributes, "session_id"))
	err := s.auditPublisher.Emit(ctx, audit.Event{
		SessionID: sessionID,
		Action:    string(event),
		Step:      attrs.ExtractString(attributes, "step"),
		Detail:    attrs.ExtractString(attributes, "detail"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Timestamp: requestcontext.Now(ctx),
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func sharedAttr(shared bool) attribute.KeyValue {
	return attribute.Bool("onboarding.advance_shared", shared)
}

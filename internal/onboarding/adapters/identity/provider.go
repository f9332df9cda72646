// Package identity is an identity provider adapter that hands the user off
// with a signed reference and accepts the provider's verdict through a
// webhook.
package identity

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	jwttoken "onboarding/internal/jwt_token"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/ports"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// DefaultReferenceTTL bounds how long a handoff reference stays valid.
const DefaultReferenceTTL = 30 * time.Minute

// ReferenceSigner issues and checks handoff references.
type ReferenceSigner interface {
	GenerateHandoffToken(sessionID id.SessionID, mode models.HandoffMode, expiresIn time.Duration) (string, error)
	ValidateHandoffToken(token string) (*jwttoken.HandoffClaims, error)
}

// CallbackVerifier checks the token the identity provider signs for each
// verdict it posts to the webhook.
type CallbackVerifier interface {
	ValidateCallbackToken(token string) (*jwttoken.CallbackClaims, error)
}

// Provider implements ports.IdentityProvider.
type Provider struct {
	signer   ReferenceSigner
	verifier CallbackVerifier
	baseURL  string
	ttl      time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	callback ports.VerificationCallback
}

type Option func(*Provider)

func WithReferenceTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithCallbackVerifier enables the verdict webhook. Without it every verdict
// is refused.
func WithCallbackVerifier(v CallbackVerifier) Option {
	return func(p *Provider) {
		p.verifier = v
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// New builds a provider that points users at baseURL.
func New(signer ReferenceSigner, baseURL string, opts ...Option) *Provider {
	p := &Provider{
		signer:  signer,
		baseURL: baseURL,
		ttl:     DefaultReferenceTTL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BeginVerification issues a fresh reference and the URL the user opens,
// either by scanning a QR code or through a redirect.
func (p *Provider) BeginVerification(ctx context.Context, sessionID id.SessionID, mode models.HandoffMode) (models.Handoff, error) {
	if err := ctx.Err(); err != nil {
		return models.Handoff{}, err
	}
	reference, err := p.signer.GenerateHandoffToken(sessionID, mode, p.ttl)
	if err != nil {
		return models.Handoff{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue handoff reference")
	}
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return models.Handoff{}, dErrors.Wrap(err, dErrors.CodeInternal, "invalid identity provider URL")
	}
	q := u.Query()
	q.Set("reference", reference)
	u.RawQuery = q.Encode()

	p.logger.InfoContext(ctx, "identity verification started",
		"session_id", sessionID.String(),
		"mode", string(mode),
	)
	return models.Handoff{Reference: reference, URL: u.String(), Mode: mode}, nil
}

// OnVerificationComplete registers the callback invoked by Complete.
func (p *Provider) OnVerificationComplete(cb ports.VerificationCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = cb
}

// Complete is called when the provider reports a verdict. The verdict must
// come with a token signed by the provider for exactly this reference and
// result, and the reference itself must be one this service issued. The
// reference alone proves nothing: the user holds it too.
func (p *Provider) Complete(ctx context.Context, token string, outcome models.IdentityOutcome) error {
	if err := p.authenticate(token, outcome); err != nil {
		p.logger.WarnContext(ctx, "identity verdict rejected", "error", err)
		return err
	}
	claims, err := p.signer.ValidateHandoffToken(outcome.Reference)
	if err != nil {
		return err
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid handoff reference")
	}

	p.mu.RLock()
	cb := p.callback
	p.mu.RUnlock()
	if cb == nil {
		return dErrors.New(dErrors.CodeUnavailable, "no verification callback registered")
	}
	return cb(ctx, sessionID, outcome)
}

func (p *Provider) authenticate(token string, outcome models.IdentityOutcome) error {
	if p.verifier == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "identity verdicts are not accepted")
	}
	if token == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "missing provider token")
	}
	claims, err := p.verifier.ValidateCallbackToken(token)
	if err != nil {
		return err
	}
	if claims.Reference != outcome.Reference || claims.Verified != outcome.Verified {
		return dErrors.New(dErrors.CodeUnauthorized, "provider token does not match the verdict")
	}
	return nil
}

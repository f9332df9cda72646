package service

import (
	"context"

	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/audit"
)

// CodeResult is returned by code entry operations. Focus is the slot the
// client should focus next, or verification.NoFocus.
type CodeResult struct {
	Focus   int             `json:"focus"`
	Session navigation.View `json:"session"`
}

// SetDigit writes one slot of the verification code.
func (s *Service) SetDigit(ctx context.Context, sessionID id.SessionID, i int, value string) (*CodeResult, error) {
	var focus int
	c, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		var err error
		focus, err = c.SetDigit(i, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CodeResult{Focus: focus, Session: c.View()}, nil
}

// Backspace reports where focus moves after a backspace in slot i.
func (s *Service) Backspace(ctx context.Context, sessionID id.SessionID, i int) (*CodeResult, error) {
	var focus int
	c, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		var err error
		focus, err = c.Backspace(i)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CodeResult{Focus: focus, Session: c.View()}, nil
}

// ResendCode asks the notifier for a new code.
func (s *Service) ResendCode(ctx context.Context, sessionID id.SessionID) (navigation.View, error) {
	c, err := s.mutate(ctx, sessionID, func(ctx context.Context, c *navigation.Controller) error {
		return c.ResendCode(ctx)
	})
	if err != nil {
		return navigation.View{}, err
	}
	s.logAudit(ctx, audit.EventCodeResent,
		"session_id", sessionID,
		"step", string(models.StepEmailCode),
	)
	return c.View(), nil
}

// BeginIdentity restarts the identity handoff, for example after the
// provider failed or the user rejected the first attempt.
func (s *Service) BeginIdentity(ctx context.Context, sessionID id.SessionID) (navigation.View, error) {
	ctx, span := s.startSpan(ctx, "begin_identity", sessionID)
	c, err := s.mutate(ctx, sessionID, func(ctx context.Context, c *navigation.Controller) error {
		return c.BeginIdentity(ctx)
	})
	endSpan(span, err)
	if err != nil {
		return navigation.View{}, err
	}
	s.logAudit(ctx, audit.EventIdentityStarted,
		"session_id", sessionID,
		"step", string(models.StepIdentityHandoff),
		"detail", c.View().Groups[models.GroupIdentity][models.FieldStatus],
	)
	return c.View(), nil
}

// completeIdentity is registered with the identity provider and receives
// its verdicts.
func (s *Service) completeIdentity(ctx context.Context, sessionID id.SessionID, outcome models.IdentityOutcome) error {
	ctx, span := s.startSpan(ctx, "complete_identity", sessionID)
	_, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		return c.CompleteIdentity(outcome)
	})
	endSpan(span, err)
	if err != nil {
		return err
	}
	status := models.StatusRejected
	if outcome.Verified {
		status = models.StatusVerified
	}
	s.logAudit(ctx, audit.EventIdentityCompleted,
		"session_id", sessionID,
		"step", string(models.StepIdentityHandoff),
		"detail", status,
		"reason", outcome.Reason,
	)
	return nil
}

// ProvisionWallet retries wallet creation.
func (s *Service) ProvisionWallet(ctx context.Context, sessionID id.SessionID) (navigation.View, error) {
	ctx, span := s.startSpan(ctx, "provision_wallet", sessionID)
	c, err := s.mutate(ctx, sessionID, func(ctx context.Context, c *navigation.Controller) error {
		return c.ProvisionWallet(ctx)
	})
	endSpan(span, err)
	if err != nil {
		return navigation.View{}, err
	}
	if walletID := c.View().Groups[models.GroupWallet][models.FieldWalletID]; walletID != "" {
		s.logAudit(ctx, audit.EventWalletProvisioned,
			"session_id", sessionID,
			"step", string(models.StepWalletSetup),
			"detail", walletID,
		)
	}
	return c.View(), nil
}

package service

import (
	"context"
	"time"

	"onboarding/internal/onboarding/device"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/audit"
	"onboarding/pkg/requestcontext"
)

// StartResult is returned when a session is created.
type StartResult struct {
	Token   string          `json:"token"`
	Session navigation.View `json:"session"`
}

// TransitionResult is returned by Advance and Back.
type TransitionResult struct {
	Transition navigation.Transition `json:"transition"`
	Session    navigation.View       `json:"session"`
}

// UpdateResult is returned by group writes.
type UpdateResult struct {
	Update  navigation.Update `json:"update"`
	Session navigation.View   `json:"session"`
}

// Start creates a session at the first welcome stage. The device is taken
// from the request's User-Agent and fixes the identity handoff mode.
func (s *Service) Start(ctx context.Context) (*StartResult, error) {
	sessionID := id.NewSessionID()
	ctx, span := s.startSpan(ctx, "start", sessionID)
	result, err := s.start(ctx, sessionID)
	endSpan(span, err)
	return result, err
}

func (s *Service) start(ctx context.Context, sessionID id.SessionID) (*StartResult, error) {
	ua := requestcontext.UserAgent(ctx)
	c := navigation.New(sessionID, s.controllerOptions(ctx, device.Detect(ua))...)
	if err := s.store.Create(ctx, c.Snapshot()); err != nil {
		return nil, translateStoreError(err, "failed to create onboarding session")
	}
	token, err := s.tokens.GenerateSessionToken(sessionID, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}
	if s.metrics != nil {
		s.metrics.IncSessionsStarted()
	}
	s.logAudit(ctx, audit.EventSessionStarted,
		"session_id", sessionID,
		"detail", device.DisplayName(ua),
	)
	return &StartResult{Token: token, Session: c.View()}, nil
}

// Get returns the current view of a session.
func (s *Service) Get(ctx context.Context, sessionID id.SessionID) (navigation.View, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return navigation.View{}, err
	}
	return c.View(), nil
}

// Advance moves the session forward. Concurrent calls for one session share
// a single attempt, so a double submit advances once.
func (s *Service) Advance(ctx context.Context, sessionID id.SessionID) (*TransitionResult, error) {
	ctx, span := s.startSpan(ctx, "advance", sessionID)
	v, err, shared := s.advances.Do(sessionID.String(), func() (any, error) {
		return s.advance(ctx, sessionID)
	})
	span.SetAttributes(sharedAttr(shared))
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return v.(*TransitionResult), nil
}

func (s *Service) advance(ctx context.Context, sessionID id.SessionID) (*TransitionResult, error) {
	start := time.Now()
	var (
		t    navigation.Transition
		from models.Position
	)
	c, err := s.mutate(ctx, sessionID, func(ctx context.Context, c *navigation.Controller) error {
		from = c.Current()
		var err error
		t, err = c.Advance(ctx)
		return err
	})
	if s.metrics != nil {
		s.metrics.ObserveAdvance(time.Since(start))
	}
	if err != nil {
		if s.metrics != nil && from.Step != "" {
			s.metrics.IncAdvanceRejected(string(from.Step), string(dErrors.CodeOf(err)))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncTransition(string(t.To.Step), "forward")
	}
	s.logAudit(ctx, audit.EventStepAdvanced,
		"session_id", sessionID,
		"step", t.To.String(),
		"detail", "from "+t.From.String(),
	)
	view := c.View()
	if t.To.Step == models.StepWalletSetup {
		if walletID := view.Groups[models.GroupWallet][models.FieldWalletID]; walletID != "" {
			s.logAudit(ctx, audit.EventWalletProvisioned,
				"session_id", sessionID,
				"step", string(models.StepWalletSetup),
				"detail", walletID,
			)
		}
	}
	return &TransitionResult{Transition: t, Session: view}, nil
}

// Back returns to the previously visited position.
func (s *Service) Back(ctx context.Context, sessionID id.SessionID) (*TransitionResult, error) {
	ctx, span := s.startSpan(ctx, "back", sessionID)
	var t navigation.Transition
	c, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		var err error
		t, err = c.Back()
		return err
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncTransition(string(t.To.Step), "back")
	}
	s.logAudit(ctx, audit.EventStepReverted,
		"session_id", sessionID,
		"step", t.To.String(),
		"detail", "from "+t.From.String(),
	)
	return &TransitionResult{Transition: t, Session: c.View()}, nil
}

// UpdateGroup merges fields into the group owned by the current step.
func (s *Service) UpdateGroup(ctx context.Context, sessionID id.SessionID, g models.Group, fields models.Fields) (*UpdateResult, error) {
	var u navigation.Update
	c, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		var err error
		u, err = c.UpdateGroup(g, fields)
		return err
	})
	if err != nil {
		return nil, err
	}
	if u.BranchReset {
		s.logAudit(ctx, audit.EventBranchReset,
			"session_id", sessionID,
			"step", c.Current().String(),
			"detail", "account type changed to "+string(c.AccountType()),
		)
	}
	return &UpdateResult{Update: u, Session: c.View()}, nil
}

// AddUBO appends an empty beneficial owner.
func (s *Service) AddUBO(ctx context.Context, sessionID id.SessionID) (navigation.View, error) {
	return s.view(s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		_, err := c.AddUBO()
		return err
	}))
}

// UpdateUBO merges fields into the beneficial owner at index i.
func (s *Service) UpdateUBO(ctx context.Context, sessionID id.SessionID, i int, fields models.Fields) (navigation.View, error) {
	return s.view(s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		_, err := c.UpdateUBO(i, fields)
		return err
	}))
}

// RemoveUBO deletes the beneficial owner at index i. The last one stays.
func (s *Service) RemoveUBO(ctx context.Context, sessionID id.SessionID, i int) (navigation.View, error) {
	return s.view(s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		return c.RemoveUBO(i)
	}))
}

// Submit completes the onboarding. Allowed once, at Complete.
func (s *Service) Submit(ctx context.Context, sessionID id.SessionID) (navigation.View, error) {
	ctx, span := s.startSpan(ctx, "submit", sessionID)
	c, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		return c.Submit()
	})
	endSpan(span, err)
	if err != nil {
		return navigation.View{}, err
	}
	if s.metrics != nil {
		s.metrics.IncSubmissions()
	}
	s.logAudit(ctx, audit.EventOnboardingSubmitted,
		"session_id", sessionID,
		"detail", string(c.AccountType()),
	)
	return c.View(), nil
}

func (s *Service) view(c *navigation.Controller, err error) (navigation.View, error) {
	if err != nil {
		return navigation.View{}, err
	}
	return c.View(), nil
}

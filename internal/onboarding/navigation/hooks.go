package navigation

import (
	"context"

	"onboarding/internal/onboarding/models"
	dErrors "onboarding/pkg/domain-errors"
)

// enter runs the collaborator hook of the step just reached. Hooks never fail
// the transition; failures are recorded and reported to the failure hook.
func (c *Controller) enter(ctx context.Context, step models.StepID) {
	switch step {
	case models.StepEmailCode:
		c.sendCode(ctx)
	case models.StepIdentityHandoff:
		if c.record.Value(models.GroupIdentity, models.FieldStatus) != models.StatusVerified {
			c.beginIdentity(ctx)
		}
	case models.StepWalletSetup:
		if c.record.Value(models.GroupWallet, models.FieldWalletID) == "" {
			c.provisionWallet(ctx)
		}
	}
}

func (c *Controller) sendCode(ctx context.Context) {
	if c.notifier == nil {
		return
	}
	email := c.record.Value(models.GroupAccount, models.FieldEmail)
	if err := c.notifier.SendVerificationCode(ctx, c.sessionID, email); err != nil {
		c.fail(ctx, models.StepEmailCode, err)
	}
}

// BeginIdentity (re)starts the identity handoff. A session already verified
// keeps its result.
func (c *Controller) BeginIdentity(ctx context.Context) error {
	if err := c.ensureStep(models.GroupIdentity); err != nil {
		return err
	}
	if c.record.Value(models.GroupIdentity, models.FieldStatus) == models.StatusVerified {
		return dErrors.New(dErrors.CodeConflict, "identity is already verified")
	}
	c.beginIdentity(ctx)
	return nil
}

func (c *Controller) beginIdentity(ctx context.Context) {
	if c.identity == nil {
		return
	}
	handoff, err := c.identity.BeginVerification(ctx, c.sessionID, models.HandoffModeFor(c.device))
	if err != nil {
		c.recordCollaborator(models.GroupIdentity, models.Fields{
			models.FieldStatus: models.StatusFailed,
			models.FieldReason: err.Error(),
		})
		c.fail(ctx, models.StepIdentityHandoff, err)
		return
	}
	c.recordCollaborator(models.GroupIdentity, models.Fields{
		models.FieldHandoffReference: handoff.Reference,
		models.FieldHandoffURL:       handoff.URL,
		models.FieldHandoffMode:      string(handoff.Mode),
		models.FieldStatus:           models.StatusPending,
		models.FieldReason:           "",
	})
}

// CompleteIdentity records the provider's verdict on a pending handoff. It
// is accepted whatever step the user is on.
func (c *Controller) CompleteIdentity(outcome models.IdentityOutcome) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	if c.record.Value(models.GroupIdentity, models.FieldStatus) != models.StatusPending {
		return dErrors.New(dErrors.CodeConflict, "no identity verification is pending")
	}
	if outcome.Reference != c.record.Value(models.GroupIdentity, models.FieldHandoffReference) {
		return dErrors.New(dErrors.CodeConflict, "handoff reference does not match the pending verification")
	}
	status := models.StatusRejected
	if outcome.Verified {
		status = models.StatusVerified
	}
	c.recordCollaborator(models.GroupIdentity, models.Fields{
		models.FieldStatus: status,
		models.FieldReason: outcome.Reason,
	})
	return nil
}

// ProvisionWallet retries wallet creation at WalletSetup.
func (c *Controller) ProvisionWallet(ctx context.Context) error {
	if err := c.ensureStep(models.GroupWallet); err != nil {
		return err
	}
	if c.record.Value(models.GroupWallet, models.FieldWalletID) != "" {
		return dErrors.New(dErrors.CodeConflict, "wallet is already provisioned")
	}
	c.provisionWallet(ctx)
	return nil
}

func (c *Controller) provisionWallet(ctx context.Context) {
	if c.wallet == nil {
		return
	}
	walletID, err := c.wallet.Provision(ctx, c.sessionID, c.record.AccountType())
	if err != nil {
		c.recordCollaborator(models.GroupWallet, models.Fields{
			models.FieldStatus: models.StatusFailed,
			models.FieldReason: err.Error(),
		})
		c.fail(ctx, models.StepWalletSetup, err)
		return
	}
	c.recordCollaborator(models.GroupWallet, models.Fields{
		models.FieldWalletID: walletID,
		models.FieldStatus:   models.StatusReady,
		models.FieldReason:   "",
	})
}

// recordCollaborator writes a collaborator-owned group. The keys are fixed
// by this file so the merge cannot fail.
func (c *Controller) recordCollaborator(g models.Group, fields models.Fields) {
	if changed, _ := c.record.Merge(g, fields); changed {
		c.touch()
	}
}

func (c *Controller) fail(ctx context.Context, step models.StepID, err error) {
	c.logger.WarnContext(ctx, "onboarding collaborator failed",
		"session_id", c.sessionID.String(),
		"step", string(step),
		"error", err,
	)
	if c.onFailure != nil {
		c.onFailure(ctx, step, err)
	}
}

package navigation

import (
	"time"

	"onboarding/internal/onboarding/documents"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/verification"
	"onboarding/internal/onboarding/workflow"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// Snapshot is the persisted state of a session. Restoring it yields a
// controller whose CanAdvance and Back behave exactly as before.
type Snapshot struct {
	SessionID   id.SessionID                                    `json:"session_id"`
	Record      *models.FormRecord                              `json:"record"`
	Current     models.Position                                 `json:"current"`
	Stack       workflow.Stack                                  `json:"stack"`
	Documents   map[models.DocumentType][]models.DocumentUpload `json:"documents"`
	Code        [models.CodeLength]string                       `json:"code"`
	Device      models.Device                                   `json:"device"`
	CreatedAt   time.Time                                       `json:"created_at"`
	UpdatedAt   time.Time                                       `json:"updated_at"`
	SubmittedAt *time.Time                                      `json:"submitted_at,omitempty"`
}

// Snapshot captures the session. The result shares nothing with c.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: c.sessionID,
		Record:    c.record.Clone(),
		Current:   c.current,
		Stack:     workflow.NewStack(c.stack.Positions()...),
		Documents: c.tracker.State(),
		Code:      c.code.Digits(),
		Device:    c.device,
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
	if c.submittedAt != nil {
		at := *c.submittedAt
		snap.SubmittedAt = &at
	}
	return snap
}

// Restore rebuilds a controller from a snapshot. Options supply the
// collaborators, which are never persisted.
func Restore(snap Snapshot, opts ...Option) (*Controller, error) {
	if snap.SessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "snapshot has no session id")
	}
	if !snap.Current.Step.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "snapshot has an unknown step")
	}
	code, err := verification.RestoreEntry(snap.Code)
	if err != nil {
		return nil, err
	}

	c := newController(opts)
	c.sessionID = snap.SessionID
	c.record = snap.Record
	if c.record == nil {
		c.record = models.NewFormRecord()
	} else {
		c.record = c.record.Clone()
	}
	c.current = snap.Current
	c.stack = workflow.NewStack(snap.Stack.Positions()...)
	c.tracker = documents.Restore(c.policies, snap.Documents, documents.WithClock(c.now))
	c.code = code
	if snap.Device != "" {
		c.device = snap.Device
	}
	c.createdAt = snap.CreatedAt
	c.updatedAt = snap.UpdatedAt
	if snap.SubmittedAt != nil {
		at := *snap.SubmittedAt
		c.submittedAt = &at
	}
	return c, nil
}

package audit

import (
	"context"
	"time"

	id "onboarding/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance
	// (KYC submissions, identity outcomes). These need long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine workflow activity. Can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	SessionID id.SessionID
	Action    string
	// Step is the workflow step the action happened on, when relevant.
	Step      string
	Detail    string
	Reason    string
	RequestID string
	ClientIP  string
}

type AuditEvent string

const (
	EventSessionStarted      AuditEvent = "session_started"
	EventStepAdvanced        AuditEvent = "step_advanced"
	EventStepReverted        AuditEvent = "step_reverted"
	EventBranchReset         AuditEvent = "branch_reset"
	EventDocumentAdded       AuditEvent = "document_added"
	EventDocumentRejected    AuditEvent = "document_rejected"
	EventDocumentRemoved     AuditEvent = "document_removed"
	EventCodeResent          AuditEvent = "code_resent"
	EventIdentityStarted     AuditEvent = "identity_started"
	EventIdentityCompleted   AuditEvent = "identity_completed"
	EventWalletProvisioned   AuditEvent = "wallet_provisioned"
	EventCollaboratorFailed  AuditEvent = "collaborator_failed"
	EventOnboardingSubmitted AuditEvent = "onboarding_submitted"
	EventTokenRejected       AuditEvent = "session_token_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventOnboardingSubmitted: CategoryCompliance,
	EventIdentityCompleted:   CategoryCompliance,
	EventBranchReset:         CategoryCompliance,
	EventWalletProvisioned:   CategoryCompliance,

	EventTokenRejected:      CategorySecurity,
	EventDocumentRejected:   CategorySecurity,
	EventCollaboratorFailed: CategorySecurity,

	EventSessionStarted:  CategoryOperations,
	EventStepAdvanced:    CategoryOperations,
	EventStepReverted:    CategoryOperations,
	EventDocumentAdded:   CategoryOperations,
	EventDocumentRemoved: CategoryOperations,
	EventCodeResent:      CategoryOperations,
	EventIdentityStarted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID id.SessionID) ([]Event, error)
}

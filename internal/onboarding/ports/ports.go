// Package ports declares the external collaborators the onboarding workflow
// depends on. Implementations live in adapters; the workflow only reports
// to them and never retries on their behalf.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks ContentUploader,IdentityProvider,Notifier,WalletProvisioner

import (
	"context"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
)

// UploadResult locates stored document content.
type UploadResult struct {
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

// ContentUploader transfers document bytes to durable storage.
type ContentUploader interface {
	Upload(ctx context.Context, file models.UploadFile) (UploadResult, error)
}

// VerificationCallback receives the outcome of an identity verification.
type VerificationCallback func(ctx context.Context, sessionID id.SessionID, outcome models.IdentityOutcome) error

// IdentityProvider hands the user off to an external identity check.
type IdentityProvider interface {
	BeginVerification(ctx context.Context, sessionID id.SessionID, mode models.HandoffMode) (models.Handoff, error)
	// OnVerificationComplete registers the callback invoked when the provider
	// reports a result. Only the last registered callback is kept.
	OnVerificationComplete(cb VerificationCallback)
}

// Notifier delivers one-time verification codes.
type Notifier interface {
	SendVerificationCode(ctx context.Context, sessionID id.SessionID, email string) error
}

// WalletProvisioner creates the wallet used by downstream investment
// features and returns its opaque identifier.
type WalletProvisioner interface {
	Provision(ctx context.Context, sessionID id.SessionID, accountType models.AccountType) (string, error)
}

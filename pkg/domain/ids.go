package domain

import (
	"github.com/google/uuid"

	dErrors "onboarding/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so the compiler rejects passing an
// upload ID where a session ID is expected.
type (
	SessionID uuid.UUID
	UploadID  uuid.UUID
)

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewUploadID returns a fresh random upload identifier.
func NewUploadID() UploadID { return UploadID(uuid.New()) }

// ParseSessionID parses a session ID at a trust boundary.
//
// Errors: CodeInvalidInput for empty, malformed or nil UUIDs.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	return SessionID(u), err
}

// ParseUploadID parses an upload ID at a trust boundary.
//
// Errors: CodeInvalidInput for empty, malformed or nil UUIDs.
func ParseUploadID(s string) (UploadID, error) {
	u, err := parseUUID(s, "upload ID")
	return UploadID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UploadID) String() string { return uuid.UUID(id).String() }
func (id UploadID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText encodes the ID in canonical UUID form.
func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText decodes an ID produced by MarshalText.
func (id *SessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id UploadID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UploadID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

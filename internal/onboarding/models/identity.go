package models

// Device classifies the client that started the session.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// HandoffMode is how the identity provider session reaches the user's phone.
type HandoffMode string

const (
	// HandoffQRCode shows a QR code that the user scans with their phone.
	HandoffQRCode HandoffMode = "qr_code"
	// HandoffRedirect sends a user already on a phone straight to the provider.
	HandoffRedirect HandoffMode = "redirect"
)

// HandoffModeFor picks the handoff mode for a device.
func HandoffModeFor(d Device) HandoffMode {
	if d == DeviceMobile {
		return HandoffRedirect
	}
	return HandoffQRCode
}

// Handoff is what the identity provider returns when verification begins.
type Handoff struct {
	Reference string      `json:"reference"`
	URL       string      `json:"url"`
	Mode      HandoffMode `json:"mode"`
}

// Collaborator statuses recorded in the Identity and Wallet groups.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
	StatusReady    = "ready"
	StatusFailed   = "failed"
)

// IdentityOutcome is reported by the identity provider once the user has
// finished (or abandoned) verification.
type IdentityOutcome struct {
	// Reference is the handoff reference the outcome belongs to.
	Reference string `json:"reference"`
	Verified  bool   `json:"verified"`
	Reason    string `json:"reason,omitempty"`
}

// CodeLength is the number of digits in an email verification code.
const CodeLength = 6

// Package device classifies the client that starts an onboarding session.
// The classification picks the identity handoff mode: desktop users scan a
// QR code with their phone, mobile users are redirected.
package device

import (
	"strings"

	"github.com/mssola/useragent"

	"onboarding/internal/onboarding/models"
)

// Detect classifies a User-Agent. Unknown or empty agents count as desktop,
// which gets the QR handoff that works from any device.
func Detect(userAgent string) models.Device {
	if userAgent == "" {
		return models.DeviceDesktop
	}
	if useragent.New(userAgent).Mobile() {
		return models.DeviceMobile
	}
	return models.DeviceDesktop
}

// DisplayName renders a User-Agent as "Browser on OS" for logs.
func DisplayName(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	return strings.TrimSpace(browser + " on " + os)
}

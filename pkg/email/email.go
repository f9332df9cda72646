// Package email normalizes and checks email addresses given by users.
package email

import (
	"net/mail"
	"strings"
)

// Normalize trims the address and lowercases its domain. The local part is
// left alone since providers may treat it case-sensitively.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return addr
	}
	return addr[:at] + "@" + strings.ToLower(addr[at+1:])
}

// Valid reports whether addr is a bare address with a dotted domain.
// Display names ("Anna <anna@example.com>") are not accepted.
func Valid(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Name != "" || parsed.Address != addr {
		return false
	}
	domain := addr[strings.LastIndexByte(addr, '@')+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

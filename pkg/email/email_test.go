package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Anna.Berzina@Example.COM ", "Anna.Berzina@example.com"},
		{"no-at-sign", "no-at-sign"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("anna@example.com"))
	assert.True(t, Valid("anna+kyc@mail.example.co.uk"))

	assert.False(t, Valid(""))
	assert.False(t, Valid("anna"))
	assert.False(t, Valid("anna@localhost"))
	assert.False(t, Valid("Anna <anna@example.com>"))
	assert.False(t, Valid("anna@example."))
}

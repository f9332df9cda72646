package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "onboarding/pkg/domain"
)

func TestExtractString(t *testing.T) {
	sessionID := id.NewSessionID()
	kv := []any{"step", "account", "session_id", sessionID, "count", 3, "step", "personal", "dangling"}

	assert.Equal(t, "personal", ExtractString(kv, "step"), "later pairs win")
	assert.Equal(t, sessionID.String(), ExtractString(kv, "session_id"))
	assert.Equal(t, "", ExtractString(kv, "count"))
	assert.Equal(t, "", ExtractString(kv, "dangling"))
	assert.Equal(t, "", ExtractString(nil, "step"))

	v, ok := Lookup(kv, "count")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

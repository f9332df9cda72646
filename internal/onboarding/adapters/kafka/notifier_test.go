package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNotifier_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewNotifier(nil, "codes")
	require.Error(t, err)

	_, err = NewNotifier([]string{"localhost:9092"}, "")
	require.Error(t, err)
}

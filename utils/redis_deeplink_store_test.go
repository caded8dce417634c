package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedisKeyParserEncode(t *testing.T) {
	parser := GetDefaultRedisKeyParser()

	key, ok := parser.encode([]string{"deeplink", "session-1"})
	require.True(t, ok)
	require.Equal(t, "deeplink__session-1", key)

	// Segments must not contain the delimiter.
	_, ok = parser.encode([]string{"deeplink", "bad__session"})
	require.False(t, ok)
}

func TestRedisKeyParserDecode(t *testing.T) {
	parser := GetDefaultRedisKeyParser()
	require.Equal(t, []string{"deeplink", "session-1"}, parser.decode("deeplink__session-1"))
}

package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	counter, err := NewCounter()
	require.NoError(t, err)

	t.Run("Empty", func(t *testing.T) {
		n, err := counter.Count("")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("CountsWords", func(t *testing.T) {
		n, err := counter.Count("hello world")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		text := "The committee approved the proposal on Tuesday."
		ids, err := counter.Encode(text)
		require.NoError(t, err)
		decoded, err := counter.Decode(ids)
		require.NoError(t, err)
		assert.Equal(t, text, decoded)
	})

	t.Run("TruncateShortTextUnchanged", func(t *testing.T) {
		out, err := counter.Truncate("hello world", 10)
		require.NoError(t, err)
		assert.Equal(t, "hello world", out)
	})

	t.Run("TruncateLongText", func(t *testing.T) {
		text := strings.Repeat("word ", 100)
		out, err := counter.Truncate(text, 10)
		require.NoError(t, err)
		n, err := counter.Count(out)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, 10)
		assert.True(t, strings.HasPrefix(text, out))
	})

	t.Run("TruncateToZero", func(t *testing.T) {
		out, err := counter.Truncate("hello", 0)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

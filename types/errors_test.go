package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderError(t *testing.T) {
	cause := errors.New("connection reset")

	t.Run("Unavailable", func(t *testing.T) {
		err := Unavailable("openai", 503, cause)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrProviderRejected)
		assert.True(t, IsRetryable(err))
		assert.Equal(t, "openai: embedding provider unavailable (status 503): connection reset", err.Error())
	})

	t.Run("Rejected", func(t *testing.T) {
		err := Rejected("gemini", 0, cause)
		assert.ErrorIs(t, err, ErrProviderRejected)
		assert.False(t, IsRetryable(err))
		assert.Equal(t, "gemini: embedding provider rejected input: connection reset", err.Error())
	})

	t.Run("SurvivesWrapping", func(t *testing.T) {
		err := fmt.Errorf("embedding brief: %w", Unavailable("openai", 429, cause))

		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 429, perr.StatusCode)
		assert.True(t, IsRetryable(err))
	})

	t.Run("PlainErrorsAreNotRetryable", func(t *testing.T) {
		assert.False(t, IsRetryable(cause))
		assert.False(t, IsRetryable(nil))
	})
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{400, ErrProviderRejected},
		{401, ErrProviderRejected},
		{404, ErrProviderRejected},
		{413, ErrProviderRejected},
		{408, ErrProviderUnavailable},
		{429, ErrProviderUnavailable},
		{500, ErrProviderUnavailable},
		{503, ErrProviderUnavailable},
		{0, ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

func TestFieldType(t *testing.T) {
	for _, ft := range []FieldType{FieldBrief, FieldAnalysis, FieldSuggest, FieldGeneric} {
		assert.True(t, ft.Valid(), ft)
	}
	assert.False(t, FieldType("").Valid())
	assert.False(t, FieldType("Brief").Valid())
}

func TestStatsHitRate(t *testing.T) {
	assert.Zero(t, Stats{}.HitRate())
	assert.InDelta(t, 0.75, Stats{Hits: 3, Misses: 1}.HitRate(), 1e-9)
}

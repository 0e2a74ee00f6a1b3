package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	vec1 := []float32{1, 0, 0}
	vec2 := []float32{0, 1, 0}

	t.Run("Identical", func(t *testing.T) {
		assert.InDelta(t, 1.0, CosineSimilarity(vec1, vec1), 1e-6)

		v := []float32{0.3, -1.7, 2.2, 0.01}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
	})

	t.Run("Orthogonal", func(t *testing.T) {
		assert.Equal(t, float32(0), CosineSimilarity(vec1, vec2))
	})

	t.Run("Opposite", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity(vec1, []float32{-2, 0, 0}), 1e-6)
	})

	t.Run("ScaleInvariant", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{2, 4, 6}
		assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		zero := []float32{0, 0, 0}
		sim := CosineSimilarity(zero, vec1)
		assert.Equal(t, float32(0), sim)
		assert.False(t, math.IsNaN(float64(sim)))
		assert.Equal(t, float32(0), CosineSimilarity(zero, zero))
	})

	t.Run("EmptyOrMismatched", func(t *testing.T) {
		assert.Equal(t, float32(0), CosineSimilarity([]float32{}, []float32{}))
		assert.Equal(t, float32(0), CosineSimilarity(vec1, []float32{1, 0}))
	})
}

func TestMeanPool(t *testing.T) {
	t.Run("Average", func(t *testing.T) {
		got := MeanPool([][]float32{{1, 0}, {0, 1}, {2, 2}})
		assert.InDeltaSlice(t, []float32{1, 1}, got, 1e-6)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, MeanPool(nil))
	})

	t.Run("MismatchedLengths", func(t *testing.T) {
		assert.Nil(t, MeanPool([][]float32{{1, 0}, {1}}))
	})
}

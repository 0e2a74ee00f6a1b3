// Package similarity provides the similarity measure used to rank cached embeddings.
package similarity

import "math"

// SimilarityFunc represents a function that computes similarity between two embedding vectors.
// Higher values indicate greater similarity.
type SimilarityFunc func(a, b []float32) float32

// CosineSimilarity computes (a·b) / (|a| * |b|), accumulating in float64.
// Mismatched lengths, empty vectors and zero norms all yield 0, never NaN.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push parallel vectors a hair past ±1
	return float32(math.Max(-1, math.Min(1, sim)))
}

// MeanPool averages equal-length vectors element-wise.
// It returns nil when vectors is empty or the lengths differ.
func MeanPool(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}
	out := make([]float32, dim)
	n := float64(len(vectors))
	for i, s := range sum {
		out[i] = float32(s / n)
	}
	return out
}

// Package knowledge holds the in-memory knowledge base, its loader and
// the similarity-based context retriever.
package knowledge

import "math"

// CosineSimilarity computes the cosine similarity of two vectors over the
// shared prefix min(len(a), len(b)). Magnitudes are taken over the same
// truncated range, so vectors of different lengths compare as if both were
// cut to the overlap. Returns 0 when the overlap is empty or either
// truncated vector has zero magnitude. The truncation tolerates
// provider-side dimension drift without raising an error.
func CosineSimilarity(a, b []float64) float64 {
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	if length == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := 0; i < length; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	denominator := math.Sqrt(magA) * math.Sqrt(magB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

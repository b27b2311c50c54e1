package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vector is 1", func(t *testing.T) {
		v := []float64{0.3, -1.2, 4.5}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("zero vector is 0", func(t *testing.T) {
		v := []float64{0.3, -1.2, 4.5}
		zero := []float64{0, 0, 0}
		assert.Equal(t, 0.0, CosineSimilarity(v, zero))
		assert.Equal(t, 0.0, CosineSimilarity(zero, v))
	})

	t.Run("empty overlap is 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(nil, []float64{1, 2}))
		assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, nil))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := []float64{1, 2, 3}
		b := []float64{-2, 0.5, 7}
		assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), 1e-12)
	})

	t.Run("orthogonal vectors are 0", func(t *testing.T) {
		a := []float64{1, 0}
		b := []float64{0, 1}
		assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-12)
	})

	t.Run("opposite vectors are -1", func(t *testing.T) {
		a := []float64{1, 2}
		b := []float64{-1, -2}
		assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-9)
	})

	t.Run("different lengths compare over shared prefix", func(t *testing.T) {
		a := []float64{1, 2, 99, -50}
		b := []float64{1, 2}
		want := CosineSimilarity([]float64{1, 2}, []float64{1, 2})
		assert.InDelta(t, want, CosineSimilarity(a, b), 1e-12)
		assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)
	})
}

package knowledge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/config"
	"github.com/alcaldiayopal/chatbot-backend/models"
)

func newTestStore(t *testing.T, chunks []models.KnowledgeChunk, emb Embedder) *Store {
	t.Helper()
	store := NewStore(staticSource{}, filepath.Join(t.TempDir(), "cache.json"), emb, zap.NewNop())
	store.mu.Lock()
	store.chunks = chunks
	store.mu.Unlock()
	return store
}

func TestRetrieverRetrieve(t *testing.T) {
	cfg := config.RetrievalConfig{TopN: 1, MinWords: 5, MinScore: 0.65, StrictThreshold: 0.70}
	base := []models.KnowledgeChunk{
		{Text: "Informacion sobre el impuesto predial en Yopal.", Embedding: []float64{1, 0, 0}},
		{Text: "Requisitos para el certificado de residencia municipal.", Embedding: []float64{0, 1, 0}},
		{Text: "Horarios de atencion de la alcaldia municipal.", Embedding: []float64{0, 0, 1}},
	}

	t.Run("returns the best matching chunk", func(t *testing.T) {
		emb := &fakeEmbedder{vectors: map[string][]float64{
			"certificado de residencia": {0.1, 0.9, 0.1},
		}}
		r := NewRetriever(newTestStore(t, base, emb), emb, cfg, zap.NewNop())

		text, topScore, found := r.Retrieve(context.Background(), "certificado de residencia")

		require.True(t, found)
		assert.Equal(t, "Requisitos para el certificado de residencia municipal.", text)
		assert.Greater(t, topScore, 0.9)
	})

	t.Run("empty base finds nothing", func(t *testing.T) {
		emb := &fakeEmbedder{}
		r := NewRetriever(newTestStore(t, nil, emb), emb, cfg, zap.NewNop())

		text, topScore, found := r.Retrieve(context.Background(), "cualquier cosa")

		assert.False(t, found)
		assert.Empty(t, text)
		assert.Zero(t, topScore)
		assert.Equal(t, 0, emb.calls)
	})

	t.Run("below min score finds nothing but reports top score", func(t *testing.T) {
		emb := &fakeEmbedder{vectors: map[string][]float64{
			"pregunta lejana": {0.5, 0.5, 0.5},
		}}
		r := NewRetriever(newTestStore(t, base, emb), emb, config.RetrievalConfig{
			TopN: 1, MinWords: 5, MinScore: 0.99, StrictThreshold: 0.99,
		}, zap.NewNop())

		text, topScore, found := r.Retrieve(context.Background(), "pregunta lejana")

		assert.False(t, found)
		assert.Empty(t, text)
		assert.Greater(t, topScore, 0.0)
	})

	t.Run("short chunks are filtered by word count", func(t *testing.T) {
		shortBase := []models.KnowledgeChunk{
			{Text: "Muy corto.", Embedding: []float64{1, 0, 0}},
			{Text: "Segmento con suficientes palabras para pasar el filtro.", Embedding: []float64{0.9, 0.1, 0}},
		}
		emb := &fakeEmbedder{vectors: map[string][]float64{
			"pregunta": {1, 0, 0},
		}}
		r := NewRetriever(newTestStore(t, shortBase, emb), emb, cfg, zap.NewNop())

		text, _, found := r.Retrieve(context.Background(), "pregunta")

		require.True(t, found)
		assert.Equal(t, "Segmento con suficientes palabras para pasar el filtro.", text)
	})

	t.Run("embedding failure finds nothing", func(t *testing.T) {
		emb := &fakeEmbedder{fail: map[string]bool{"falla": true}}
		r := NewRetriever(newTestStore(t, base, emb), emb, cfg, zap.NewNop())

		text, topScore, found := r.Retrieve(context.Background(), "falla")

		assert.False(t, found)
		assert.Empty(t, text)
		assert.Zero(t, topScore)
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		tied := []models.KnowledgeChunk{
			{Text: "Primer segmento identico con cinco palabras aqui.", Embedding: []float64{1, 0, 0}},
			{Text: "Segundo segmento identico con cinco palabras aqui.", Embedding: []float64{1, 0, 0}},
		}
		emb := &fakeEmbedder{vectors: map[string][]float64{
			"empate": {1, 0, 0},
		}}
		r := NewRetriever(newTestStore(t, tied, emb), emb, cfg, zap.NewNop())

		text, _, found := r.Retrieve(context.Background(), "empate")

		require.True(t, found)
		assert.Equal(t, "Primer segmento identico con cinco palabras aqui.", text)
	})

	t.Run("top n greater than one joins chunks", func(t *testing.T) {
		emb := &fakeEmbedder{vectors: map[string][]float64{
			"impuestos y certificados": {0.7, 0.7, 0},
		}}
		r := NewRetriever(newTestStore(t, base, emb), emb, config.RetrievalConfig{
			TopN: 2, MinWords: 5, MinScore: 0.5, StrictThreshold: 0.5,
		}, zap.NewNop())

		text, _, found := r.Retrieve(context.Background(), "impuestos y certificados")

		require.True(t, found)
		assert.Contains(t, text, "impuesto predial")
		assert.Contains(t, text, "certificado de residencia")
		assert.Contains(t, text, "\n\n")
	})
}

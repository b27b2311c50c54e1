package knowledge

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/config"
	"github.com/alcaldiayopal/chatbot-backend/services/embedding"
)

// Retriever ranks knowledge-base chunks against a question embedding and
// assembles the context passed to answer generation.
type Retriever struct {
	store    *Store
	embedder Embedder
	cfg      config.RetrievalConfig
	logger   *zap.Logger
}

// NewRetriever creates a new context retriever
func NewRetriever(store *Store, embedder Embedder, cfg config.RetrievalConfig, logger *zap.Logger) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

type scoredChunk struct {
	text  string
	score float64
}

// Retrieve embeds the question (short queries permitted), ranks every chunk
// by descending cosine similarity and returns the surviving chunk texts
// joined by a blank line. topScore is the best similarity across the whole
// base before filtering, used by the caller's acceptance gate. found is
// false when the base is empty, the embedding fails, or nothing passes the
// score/word-count filter; topScore is still reported when available.
//
// Ranking is a total order: descending score with ties broken by insertion
// order (stable sort), so results are deterministic for a given base.
func (r *Retriever) Retrieve(ctx context.Context, question string) (string, float64, bool) {
	chunks := r.store.Chunks()
	if len(chunks) == 0 {
		return "", 0, false
	}

	qEmbedding, err := r.embedder.Embed(ctx, question, embedding.Options{AllowShort: true})
	if err != nil {
		r.logger.Warn("could not embed question",
			zap.String("question", preview(question, 80)),
			zap.Error(err))
		return "", 0, false
	}

	ranked := make([]scoredChunk, len(chunks))
	for i, chunk := range chunks {
		ranked[i] = scoredChunk{
			text:  chunk.Text,
			score: CosineSimilarity(qEmbedding, chunk.Embedding),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	topScore := ranked[0].score

	relevant := make([]string, 0, r.cfg.TopN)
	for _, c := range ranked {
		if len(relevant) == r.cfg.TopN {
			break
		}
		if c.score >= r.cfg.MinScore && len(strings.Fields(c.text)) >= r.cfg.MinWords {
			relevant = append(relevant, c.text)
		}
	}

	if len(relevant) == 0 {
		r.logger.Info("no relevant context for question",
			zap.String("question", preview(question, 80)),
			zap.Float64("top_score", topScore))
		return "", topScore, false
	}

	return strings.Join(relevant, "\n\n"), topScore, true
}

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/models"
	"github.com/alcaldiayopal/chatbot-backend/services/embedding"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string, opts embedding.Options) ([]float64, error)
}

// segmentDelimiter separates self-contained segments in the source
// document: a marker line of the form "=== ... ===".
var segmentDelimiter = regexp.MustCompile(`===\s*.*?\s*===`)

// Store is the in-memory knowledge base. It is loaded once at startup,
// either from the JSON cache snapshot or rebuilt from the source document,
// and is read-only afterwards except for watcher-driven Reload, which swaps
// the whole snapshot under the write lock.
type Store struct {
	mu        sync.RWMutex
	chunks    []models.KnowledgeChunk
	source    Source
	cachePath string
	embedder  Embedder
	logger    *zap.Logger
}

// NewStore creates a new knowledge store
func NewStore(source Source, cachePath string, embedder Embedder, logger *zap.Logger) *Store {
	return &Store{
		source:    source,
		cachePath: cachePath,
		embedder:  embedder,
		logger:    logger,
	}
}

// Load populates the knowledge base. If the cache snapshot exists it is
// deserialized directly (fast path, no re-embedding); otherwise the source
// document is segmented, embedded and the result persisted to the cache.
// A missing source document is a fatal startup error.
func (s *Store) Load(ctx context.Context) error {
	if chunks, ok := s.loadCache(); ok {
		s.mu.Lock()
		s.chunks = chunks
		s.mu.Unlock()
		s.logger.Info("knowledge base loaded from cache",
			zap.String("path", s.cachePath),
			zap.Int("chunks", len(chunks)))
		return nil
	}
	return s.rebuild(ctx)
}

// Reload rebuilds the knowledge base from the source document, bypassing
// the cache fast path, and rewrites the cache snapshot.
func (s *Store) Reload(ctx context.Context) error {
	return s.rebuild(ctx)
}

// Chunks returns a snapshot of the knowledge base. The returned slice must
// not be mutated; chunks themselves are immutable.
func (s *Store) Chunks() []models.KnowledgeChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks
}

// Len returns the number of chunks currently loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// loadCache attempts the cache fast path.
func (s *Store) loadCache() ([]models.KnowledgeChunk, bool) {
	raw, err := os.ReadFile(s.cachePath)
	if err != nil {
		return nil, false
	}
	var chunks []models.KnowledgeChunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		s.logger.Warn("knowledge cache unreadable, rebuilding",
			zap.String("path", s.cachePath),
			zap.Error(err))
		return nil, false
	}
	return chunks, true
}

// rebuild segments the source document, embeds each segment and persists
// the result. Segments whose embedding fails are skipped, not fatal.
func (s *Store) rebuild(ctx context.Context) error {
	text, err := s.source.Text()
	if err != nil {
		return fmt.Errorf("load knowledge: %w", err)
	}

	segments := splitSegments(text)
	chunks := make([]models.KnowledgeChunk, 0, len(segments))
	for i, segment := range segments {
		vector, err := s.embedder.Embed(ctx, segment, embedding.Options{})
		if err != nil {
			s.logger.Warn("segment skipped, embedding failed",
				zap.Int("segment", i+1),
				zap.String("preview", preview(segment, 80)),
				zap.Error(err))
			continue
		}
		chunks = append(chunks, models.KnowledgeChunk{Text: segment, Embedding: vector})
	}

	s.mu.Lock()
	s.chunks = chunks
	s.mu.Unlock()

	s.persistCache(chunks)
	s.logger.Info("knowledge base built from source",
		zap.Int("segments", len(segments)),
		zap.Int("chunks", len(chunks)))
	return nil
}

// persistCache writes the snapshot; failures are logged, never fatal.
func (s *Store) persistCache(chunks []models.KnowledgeChunk) {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		s.logger.Error("failed to marshal knowledge cache", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.cachePath, data, 0o644); err != nil {
		s.logger.Error("failed to write knowledge cache",
			zap.String("path", s.cachePath),
			zap.Error(err))
	}
}

// splitSegments splits the document on the delimiter convention, trimming
// and discarding empty segments. Resulting segments never have empty text.
func splitSegments(text string) []string {
	parts := segmentDelimiter.Split(text, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

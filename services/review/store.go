package review

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/models"
)

// timestampLayout renders entry times for human reviewers.
const timestampLayout = "02/01/2006, 15:04:05"

// Store persists questions the bot could not answer, grouped by session,
// for later review by municipality staff. The backing file is small and
// rewritten whole on every save; a single mutex serializes writers.
type Store struct {
	mu     sync.Mutex
	path   string
	loc    *time.Location
	logger *zap.Logger
}

// NewStore creates a review store backed by the given JSON file. Timestamps
// are rendered in Colombia local time when the zone database allows it.
func NewStore(path string, logger *zap.Logger) *Store {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		logger.Warn("timezone America/Bogota unavailable, using UTC", zap.Error(err))
		loc = time.UTC
	}
	return &Store{path: path, loc: loc, logger: logger}
}

// Save appends a deferred question to the session's review list. Failures
// are logged and swallowed: losing a review entry must never fail the
// conversation turn that produced it.
func (s *Store) Save(sessionID, message string, fragments []string, topScore float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	if fragments == nil {
		fragments = []string{}
	}
	data[sessionID] = append(data[sessionID], models.UnansweredEntry{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: time.Now().In(s.loc).Format(timestampLayout),
		Context:   fragments,
		TopScore:  topScore,
	})

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		s.logger.Error("failed to marshal unanswered questions", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Error("failed to write unanswered questions",
			zap.String("path", s.path),
			zap.Error(err))
		return
	}
	s.logger.Info("unanswered question saved for review",
		zap.String("session_id", sessionID),
		zap.Float64("top_score", topScore))
}

// All returns every deferred question grouped by session.
func (s *Store) All() map[string][]models.UnansweredEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads the current file; a missing or corrupt file yields an empty
// map so saving can always proceed.
func (s *Store) load() map[string][]models.UnansweredEntry {
	data := make(map[string][]models.UnansweredEntry)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("unanswered questions file corrupt, starting over",
			zap.String("path", s.path),
			zap.Error(err))
		return make(map[string][]models.UnansweredEntry)
	}
	return data
}

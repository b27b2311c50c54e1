package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/models"
)

// Store keeps the usage counters in a JSON file, read-modified-rewritten
// under a mutex on every update. Volumes are municipal-helpdesk sized, so a
// flat file beats operating a database here.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewStore creates a new statistics store
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load returns the current statistics document, creating the file with
// zeroed counters on first use. A corrupt file is replaced with a fresh
// document rather than failing reads forever.
func (s *Store) Load() (*models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// RecordQuestion counts one citizen question for the session. A session
// seen for the first time also counts as a new user.
func (s *Store) RecordQuestion(sessionID string) error {
	return s.update(func(stats *models.Stats) {
		sess := s.ensureSession(stats, sessionID, true)
		sess.Questions++
		stats.TotalQuestions++
	})
}

// RecordAnswered counts one answered question for the session.
func (s *Store) RecordAnswered(sessionID string) error {
	return s.update(func(stats *models.Stats) {
		sess := s.ensureSession(stats, sessionID, true)
		sess.Answered++
		stats.QuestionsAnswered++
	})
}

// RecordUnanswered counts one deferred question. Unlike the other
// counters this never increments the user total: the session entry is
// created silently when missing.
func (s *Store) RecordUnanswered(sessionID string) error {
	return s.update(func(stats *models.Stats) {
		sess := s.ensureSession(stats, sessionID, false)
		sess.Unanswered++
		stats.QuestionsUnanswered++
	})
}

func (s *Store) ensureSession(stats *models.Stats, sessionID string, countUser bool) *models.SessionStats {
	sess, ok := stats.Sessions[sessionID]
	if !ok {
		sess = &models.SessionStats{}
		stats.Sessions[sessionID] = sess
		if countUser {
			stats.TotalUsers++
		}
	}
	return sess
}

func (s *Store) update(mutate func(*models.Stats)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.load()
	if err != nil {
		return err
	}
	mutate(stats)
	return s.save(stats)
}

func (s *Store) load() (*models.Stats, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		stats := models.NewStats()
		if err := s.save(stats); err != nil {
			return nil, err
		}
		s.logger.Info("statistics file created", zap.String("path", s.path))
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}

	stats := models.NewStats()
	if err := json.Unmarshal(raw, stats); err != nil {
		s.logger.Warn("statistics file corrupt, resetting counters",
			zap.String("path", s.path),
			zap.Error(err))
		stats = models.NewStats()
	}
	if stats.Sessions == nil {
		stats.Sessions = make(map[string]*models.SessionStats)
	}
	return stats, nil
}

func (s *Store) save(stats *models.Stats) error {
	raw, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}

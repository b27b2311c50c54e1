package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/models"
)

// Registry holds all active conversation sessions in memory, keyed by the
// caller-supplied session identifier. Sessions are created lazily on first
// access and evicted by the reaper once idle past the expiration window.
//
// The registry lock guards the map only. Callers receive a *models.Session
// and mutate it without further locking; the chat service serializes turns
// per session, so concurrent requests for the SAME session identifier are
// the caller's responsibility.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[string]*models.Session
	expiration time.Duration
	logger     *zap.Logger
}

// NewRegistry creates a new session registry
func NewRegistry(expiration time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		sessions:   make(map[string]*models.Session),
		expiration: expiration,
		logger:     logger,
	}
}

// GetOrCreate returns the session for the given identifier, creating it if
// absent, and marks it active now.
func (r *Registry) GetOrCreate(id string) *models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		sess = &models.Session{ID: id}
		r.sessions[id] = sess
		r.logger.Debug("session created", zap.String("session_id", id))
	}
	sess.LastActive = time.Now()
	return sess
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap removes every session idle longer than the expiration window as of
// the given instant and returns how many were evicted. Conversation history
// and any pending disambiguation state vanish with the session.
func (r *Registry) Reap(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, sess := range r.sessions {
		if now.Sub(sess.LastActive) > r.expiration {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Info("expired sessions reaped",
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(r.sessions)))
	}
	return evicted
}

// StartReaper launches the background eviction loop. It stops when ctx is
// cancelled.
func (r *Registry) StartReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Reap(time.Now())
			}
		}
	}()
}

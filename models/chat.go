package models

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PendingAmbiguity holds the state between the turn that raised an
// under-specified question and the turn that resolves it. At most one
// exists per session at a time.
type PendingAmbiguity struct {
	OriginalMessage string   `json:"original_message"`
	Suggestions     []string `json:"suggestions"`
}

// Session is the per-conversation mutable state, owned exclusively by the
// session registry and keyed by the client-supplied session id.
type Session struct {
	ID               string
	Messages         []ChatMessage
	LastActive       time.Time
	PendingAmbiguity *PendingAmbiguity
	NameCaptured     bool
}

// Append adds a message to the session history and stamps it with now.
func (s *Session) Append(role Role, content string) {
	s.Messages = append(s.Messages, ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// KnowledgeChunk is one self-contained knowledge-base entry. Immutable once
// created; the JSON tags are the cache-file contract.
type KnowledgeChunk struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

// UnansweredEntry is one deferred question persisted for human review.
type UnansweredEntry struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Context   []string `json:"context"`
	TopScore  float64  `json:"topScore"`
}

// SessionStats are the per-session counters of the statistics store.
// The Spanish JSON tags are the on-disk and API contract.
type SessionStats struct {
	Questions  int `json:"preguntas"`
	Answered   int `json:"respondidas"`
	Unanswered int `json:"no_respondidas"`
}

// Stats is the aggregate statistics document, read-modified-rewritten on
// every conversational turn.
type Stats struct {
	TotalUsers          int                      `json:"total_usuarios"`
	TotalQuestions      int                      `json:"total_preguntas"`
	QuestionsAnswered   int                      `json:"preguntas_con_respuesta"`
	QuestionsUnanswered int                      `json:"preguntas_sin_respuestas"`
	Sessions            map[string]*SessionStats `json:"sesiones"`
}

// NewStats returns an empty statistics document.
func NewStats() *Stats {
	return &Stats{Sessions: make(map[string]*SessionStats)}
}

package chat

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/config"
	"github.com/alcaldiayopal/chatbot-backend/models"
)

// ContextRetriever supplies knowledge-base context for a question together
// with the best similarity score seen across the whole base.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question string) (contextText string, topScore float64, found bool)
}

// Generator produces the assistant answer for a prepared conversation.
type Generator interface {
	Complete(ctx context.Context, messages []models.ChatMessage) string
}

// SessionProvider hands out the mutable per-conversation state.
type SessionProvider interface {
	GetOrCreate(id string) *models.Session
}

// ReviewSaver records questions deferred for human review.
type ReviewSaver interface {
	Save(sessionID, message string, fragments []string, topScore float64)
}

// StatsRecorder tracks usage counters per conversational turn.
type StatsRecorder interface {
	RecordQuestion(sessionID string) error
	RecordAnswered(sessionID string) error
	RecordUnanswered(sessionID string) error
}

// Reply is the outcome of one conversation turn.
type Reply struct {
	Response     string
	ContextFound bool
}

const (
	msgInvalid     = "⚠️ No entiendo tu mensaje. Por favor escribe una oración o pregunta clara."
	msgDeferral    = "⚠️ Aún estoy aprendiendo y no tengo la respuesta, pero la guardaré para revisión."
	msgNameWarning = "⚠️ Ese no es un nombre válido. Por favor ingresa tu nombre real."
)

var greetingReplies = []string{
	"👋 ¡Hola! ¿En qué puedo ayudarte hoy?",
	"😊 ¡Hola! ¿Qué necesitas saber?",
	"👋 ¡Bienvenido! Estoy aquí para ayudarte.",
	"🙂 ¡Hola! ¿Cómo puedo asistirte?",
	"😎 ¡Hey! ¿En qué te puedo colaborar?",
	"😄 ¡Saludos! ¿Qué información buscas?",
	"🌟 ¡Hola! Cuéntame, ¿qué necesitas?",
	"✨ ¡Buenas! ¿Cómo te ayudo hoy?",
}

var thanksReplies = []string{
	"🙏 ¡Con gusto! Estoy aquí para ayudarte.",
	"😊 ¡De nada! Es un placer asistirte.",
	"🤗 ¡Para eso estoy! Cualquier cosa me avisas.",
	"🫶 ¡No hay de qué! Estoy para servirte.",
	"💙 ¡Encantado de ayudar! 😊",
	"🙏 ¡A la orden! Siempre disponible para ti.",
	"🫶 ¡Con mucho gusto! Si necesitas algo más, avísame.",
	"💙 ¡Me alegra poder ayudarte! 😊",
	"🥳 ¡Es un placer! Para eso estamos.",
	"😉 ¡No es nada! Cuenta conmigo cuando lo necesites.",
}

var laughReplies = []string{
	"🤣 jajaja, me contagiaste la risa.",
	"😄 jajaja, ¡qué bueno!",
	"😂 jajaja, me hiciste reír.",
	"🤣 jajaja, ¡buena esa!",
	"😆 jajaja, me alegra que estés de buen humor.",
	"😄 jajaja, ¡la risa es contagiosa!",
	"🤣 jajaja, me encanta tu energía.",
	"😂 jajaja, ¡qué gracioso!",
	"😁 jajaja, el buen humor es lo mejor.",
}

var (
	nameAfterFull = regexp.MustCompile(`(?i)mi nombre es`)
	nameAfterSoy  = regexp.MustCompile(`(?i)soy`)
	insultWords   = []string{"hp", "hijueputa", "gonorrea", "malparido", "puta", "prostituta"}

	// Phrases after "soy" that introduce a role, not a name.
	forbiddenNameStarts = []string{
		"beneficiario", "de ", "del ", "la ", "el ", "usuario", "trabajador", "estudiante",
	}
)

const systemPromptTemplate = `
Eres un asistente virtual de la Alcaldía de Yopal. Responde SOLO con la información del contexto.

Reglas:
- No inventes información ni uses conocimiento externo.
- Si el contexto NO contiene enlaces, no inventes ni agregues ninguno.
- Si la respuesta del contexto contiene únicamente un enlace, nunca lo devuelvas solo: acompáñalo siempre de un paso a paso sencillo o una instrucción clara sobre qué hacer en esa página.
- Si en el contexto tiene enlace, inclúyelo en la respuesta en formato markdown: [texto](url)
- Reescribe las respuestas en un tono claro, cordial y natural, no las copies textualmente
- Formatea tu respuesta usando markdown cuando sea apropiado (negritas, listas, enlaces, etc.)

Contexto:

%s
`

// Service orchestrates a conversation turn: validation, social shortcuts,
// name capture, disambiguation, retrieval, the acceptance gate and finally
// answer generation.
type Service struct {
	retriever ContextRetriever
	generator Generator
	sessions  SessionProvider
	review    ReviewSaver
	stats     StatsRecorder
	cfg       config.SessionConfig
	strict    float64
	logger    *zap.Logger
}

// NewService creates a new chat service
func NewService(
	retriever ContextRetriever,
	generator Generator,
	sessions SessionProvider,
	review ReviewSaver,
	stats StatsRecorder,
	cfg config.SessionConfig,
	strictThreshold float64,
	logger *zap.Logger,
) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		sessions:  sessions,
		review:    review,
		stats:     stats,
		cfg:       cfg,
		strict:    strictThreshold,
		logger:    logger,
	}
}

// Respond runs one conversation turn. Only statistics persistence failures
// surface as errors; every other problem degrades to a user-facing reply.
func (s *Service) Respond(ctx context.Context, sessionID, message string) (Reply, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	finalMessage := message

	// Step 1: validation. Rejected turns leave no trace in history or stats.
	if !IsValidMessage(finalMessage, sess.PendingAmbiguity != nil) {
		s.logger.Debug("message rejected by validation",
			zap.String("session_id", sessionID))
		return Reply{Response: msgInvalid}, nil
	}

	sess.Append(models.RoleUser, finalMessage)
	if err := s.stats.RecordQuestion(sessionID); err != nil {
		return Reply{}, fmt.Errorf("record question: %w", err)
	}

	// Step 2: social shortcuts never reach the knowledge base.
	if IsGreeting(finalMessage) {
		return s.socialReply(sess, greetingReplies), nil
	}
	if IsThanks(finalMessage) {
		return s.socialReply(sess, thanksReplies), nil
	}
	if IsLaugh(finalMessage) {
		return s.socialReply(sess, laughReplies), nil
	}

	// Step 3: name capture on first introduction.
	if reply, handled := s.captureName(sess, finalMessage); handled {
		return reply, nil
	}

	// Step 4: raise a disambiguation menu for under-specified topics. This
	// runs before resolution so an ambiguous reply re-raises the menu.
	if suggestions, ambiguous := DetectAmbiguity(finalMessage); ambiguous {
		sess.PendingAmbiguity = &models.PendingAmbiguity{
			OriginalMessage: finalMessage,
			Suggestions:     suggestions,
		}
		if err := s.stats.RecordAnswered(sessionID); err != nil {
			return Reply{}, fmt.Errorf("record answered: %w", err)
		}
		return Reply{Response: ambiguityMenu("**🤔 Tu mensaje es muy general. ¿Te refieres a:**", suggestions)}, nil
	}

	// Step 5: resolve a pending menu choice.
	if sess.PendingAmbiguity != nil {
		resolved, ok := ResolveAmbiguity(finalMessage, sess.PendingAmbiguity)
		if !ok {
			if err := s.stats.RecordAnswered(sessionID); err != nil {
				return Reply{}, fmt.Errorf("record answered: %w", err)
			}
			return Reply{Response: ambiguityMenu("**⚠️ Esa opción no es válida.** Por favor elige una de las siguientes:", sess.PendingAmbiguity.Suggestions)}, nil
		}
		sess.PendingAmbiguity = nil
		finalMessage = resolved
		s.logger.Info("ambiguity resolved",
			zap.String("session_id", sessionID),
			zap.String("resolved", finalMessage))
	}

	// Step 6: retrieval and the acceptance gate.
	contextText, topScore, found := s.retriever.Retrieve(ctx, finalMessage)
	if !found || strings.TrimSpace(contextText) == "" || topScore < s.strict {
		var fragments []string
		if contextText != "" {
			fragments = []string{contextText}
		}
		s.review.Save(sessionID, finalMessage, fragments, topScore)
		if err := s.stats.RecordUnanswered(sessionID); err != nil {
			return Reply{}, fmt.Errorf("record unanswered: %w", err)
		}
		sess.Append(models.RoleAssistant, msgDeferral)
		s.logger.Info("question deferred for review",
			zap.String("session_id", sessionID),
			zap.Float64("top_score", topScore))
		return Reply{Response: msgDeferral}, nil
	}

	// Step 7: generation.
	answer := s.generator.Complete(ctx, s.buildConversation(sess, finalMessage, contextText))
	sess.Append(models.RoleAssistant, answer)
	if err := s.stats.RecordAnswered(sessionID); err != nil {
		return Reply{}, fmt.Errorf("record answered: %w", err)
	}
	return Reply{Response: answer, ContextFound: true}, nil
}

// socialReply picks a canned response, records it in history and returns it.
func (s *Service) socialReply(sess *models.Session, pool []string) Reply {
	reply := pool[rand.Intn(len(pool))]
	sess.Append(models.RoleAssistant, reply)
	return Reply{Response: reply}
}

// captureName handles "mi nombre es X" and "soy X" introductions once per
// session. handled is false when the message is not an introduction or the
// captured text looks like a role description rather than a name.
func (s *Service) captureName(sess *models.Session, message string) (Reply, bool) {
	lowered := strings.ToLower(message)
	if sess.NameCaptured {
		return Reply{}, false
	}
	if !strings.Contains(lowered, "mi nombre es") && !strings.Contains(lowered, "soy ") {
		return Reply{}, false
	}

	var possibleName string
	if strings.Contains(lowered, "mi nombre es") {
		possibleName = afterPattern(nameAfterFull, message)
	} else {
		possibleName = afterPattern(nameAfterSoy, message)
	}

	loweredName := strings.ToLower(possibleName)
	for _, prefix := range forbiddenNameStarts {
		if strings.HasPrefix(loweredName, prefix) {
			return Reply{}, false
		}
	}

	normalized := Normalize(possibleName)
	if containsAny(normalized, greetingWords) ||
		containsAny(normalized, thanksWords) ||
		containsAny(normalized, insultWords) {
		sess.Append(models.RoleAssistant, msgNameWarning)
		return Reply{Response: msgNameWarning}, true
	}

	confirm := fmt.Sprintf("¡Encantado de conocerte, %s! ¿En qué puedo ayudarte hoy?", possibleName)
	sess.Append(models.RoleAssistant, confirm)
	sess.NameCaptured = true
	return Reply{Response: confirm}, true
}

// buildConversation assembles the system prompt, the recent history window
// and the (possibly disambiguated) current question.
func (s *Service) buildConversation(sess *models.Session, finalMessage, contextText string) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, s.cfg.HistoryLimit+2)
	messages = append(messages, models.ChatMessage{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(systemPromptTemplate, contextText),
	})

	// History excludes the user message appended this turn; the current
	// question goes last, in its resolved form.
	history := sess.Messages[:len(sess.Messages)-1]
	if len(history) > s.cfg.HistoryLimit {
		history = history[len(history)-s.cfg.HistoryLimit:]
	}
	messages = append(messages, history...)

	messages = append(messages, models.ChatMessage{
		Role:    models.RoleUser,
		Content: finalMessage,
	})
	return messages
}

// afterPattern returns the trimmed text following the first match of re,
// or empty when re does not occur.
func afterPattern(re *regexp.Regexp, text string) string {
	parts := re.Split(text, 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ambiguityMenu renders a numbered option list under a heading.
func ambiguityMenu(heading string, suggestions []string) string {
	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n\n")
	for i, s := range suggestions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, s)
	}
	return b.String()
}

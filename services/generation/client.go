package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/models"
)

// User-facing fallback texts. Generation never fails a conversation turn;
// transport or shape problems degrade to one of these.
const (
	msgConnectionError    = "⚠️ Error al conectar con el modelo de IA."
	msgUnexpectedResponse = "⚠️ Respuesta inesperada del modelo."
	msgEmptyResponse      = "⚠️ Respuesta vacía del modelo."
)

// Config holds the LLM provider settings.
type Config struct {
	URL         string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client calls the OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new LLM client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the conversation to the model and returns the assistant
// text. Errors never propagate: any failure returns a Spanish fallback
// message so the caller can answer the citizen regardless.
func (c *Client) Complete(ctx context.Context, messages []models.ChatMessage) string {
	wire := make([]wireMessage, len(messages))
	for i, m := range messages {
		wire[i] = wireMessage{Role: string(m.Role), Content: m.Content}
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    wire,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Stream:      false,
	})
	if err != nil {
		c.logger.Error("failed to marshal completion request", zap.Error(err))
		return msgConnectionError
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to build completion request", zap.Error(err))
		return msgConnectionError
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("llm request failed", zap.Error(err))
		return msgConnectionError
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Error("llm response unparsable", zap.Error(err))
		return msgUnexpectedResponse
	}

	// Every choice must carry content for the payload to count as
	// well-formed; a single empty choice poisons the whole response.
	if len(parsed.Choices) == 0 {
		return msgEmptyResponse
	}
	for _, choice := range parsed.Choices {
		if choice.Message.Content == "" {
			return msgUnexpectedResponse
		}
	}
	return parsed.Choices[0].Message.Content
}

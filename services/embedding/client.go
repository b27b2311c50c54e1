// Package embedding provides the remote embedding provider client.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Failure taxonomy. Callers use errors.Is to distinguish "input rejected"
// from "provider failed"; both are terminal, the client never retries.
var (
	// ErrTextTooShort indicates the cleaned text did not meet the minimum length.
	ErrTextTooShort = errors.New("embedding: text empty or too short after cleaning")
	// ErrProviderStatus indicates the provider returned a non-success HTTP status.
	ErrProviderStatus = errors.New("embedding: provider returned non-success status")
	// ErrNoEmbedding indicates the response carried no numeric embedding array.
	ErrNoEmbedding = errors.New("embedding: response contained no embedding vector")
)

const defaultMaxChars = 4000

// Options controls per-call embedding behavior.
type Options struct {
	// AllowShort lowers the minimum cleaned-text length from 5 to 1,
	// permitting single-word queries.
	AllowShort bool
	// MaxChars overrides the configured truncation limit when positive.
	MaxChars int
}

// Config configures the embedding client.
type Config struct {
	URL      string
	Model    string
	Timeout  time.Duration
	MaxChars int
}

// Client converts text into a fixed-length numeric vector via a remote
// HTTP call.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new embedding client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxChars == 0 {
		cfg.MaxChars = defaultMaxChars
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embedResponse covers the accepted provider response shapes, checked in
// priority order: data[0].embedding, then embedding, then vectors[0].values.
type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Embedding []float64 `json:"embedding"`
	Vectors []struct {
		Values []float64 `json:"values"`
	} `json:"vectors"`
}

// Embed returns the embedding vector for the given text. The text is
// cleaned, length-checked and truncated before the provider call. Any
// provider failure is reported as an error; the caller decides fallback
// behavior.
func (c *Client) Embed(ctx context.Context, text string, opts Options) ([]float64, error) {
	clean := cleanText(text)

	minChars := 5
	if opts.AllowShort {
		minChars = 1
	}
	if len([]rune(clean)) < minChars {
		return nil, fmt.Errorf("%w (len=%d, min=%d)", ErrTextTooShort, len([]rune(clean)), minChars)
	}

	maxChars := c.cfg.MaxChars
	if opts.MaxChars > 0 {
		maxChars = opts.MaxChars
	}
	if runes := []rune(clean); len(runes) > maxChars {
		c.logger.Warn("text truncated before embedding",
			zap.Int("length", len(runes)),
			zap.Int("max_chars", maxChars))
		clean = string(runes[:maxChars])
	}

	body, err := json.Marshal(embedRequest{Model: c.cfg.Model, Input: clean})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("embedding provider returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncateBytes(raw, 300)))
		return nil, fmt.Errorf("%w: HTTP %d", ErrProviderStatus, resp.StatusCode)
	}

	var out embedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("embedding: unparsable response body: %w", err)
	}

	vector := extractVector(&out)
	if len(vector) == 0 {
		c.logger.Warn("no embedding in provider response",
			zap.ByteString("body", truncateBytes(raw, 300)))
		return nil, ErrNoEmbedding
	}
	return vector, nil
}

// extractVector picks the first array found across the known response shapes.
func extractVector(out *embedResponse) []float64 {
	if len(out.Data) > 0 && len(out.Data[0].Embedding) > 0 {
		return out.Data[0].Embedding
	}
	if len(out.Embedding) > 0 {
		return out.Embedding
	}
	if len(out.Vectors) > 0 && len(out.Vectors[0].Values) > 0 {
		return out.Vectors[0].Values
	}
	return nil
}

// cleanText strips control and non-printable characters outside the
// permitted set (tab, LF, CR, printable ASCII, U+00A0–U+FFFF) and trims
// surrounding whitespace.
func cleanText(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r >= 0x20 && r <= 0x7E:
			return r
		case r >= 0x00A0 && r <= 0xFFFF:
			return r
		default:
			return -1
		}
	}, text)
	return strings.TrimSpace(cleaned)
}

func truncateBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

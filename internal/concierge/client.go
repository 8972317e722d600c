// Package concierge relays chat messages to a user-configured external
// webhook and returns the bot's reply. No conversation state is persisted
// on this side; the webhook owns the dialogue.
package concierge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/config"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/resilience"
)

// maxReplyBytes caps how much of a webhook response body is read.
const maxReplyBytes = 1 << 20

// ErrUnavailable is returned while the circuit breaker holds the webhook
// offline.
var ErrUnavailable = errors.New("concierge webhook unavailable")

// Message is the outbound payload. URL carries the page the user sent the
// message from, so the webhook can answer with page context.
type Message struct {
	URL            string `json:"url"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	ClientID       string `json:"client_id"`
	UserEmail      string `json:"user_email"`
}

// Validate checks the outbound payload.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Message) == "" {
		return &domain.ValidationError{Field: "message", Message: "message is required"}
	}
	return nil
}

// Client posts messages to the configured webhook behind a circuit
// breaker with retries.
type Client struct {
	httpClient *http.Client
	webhookURL string
	cb         *gobreaker.CircuitBreaker
	retry      resilience.Config
	logger     *zap.Logger
}

// NewClient builds the relay from config. A nil httpClient falls back to
// a client bounded by the configured request timeout.
func NewClient(httpClient *http.Client, cfg config.ConciergeConfig, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &Client{
		httpClient: httpClient,
		webhookURL: cfg.WebhookURL,
		cb:         resilience.NewCircuitBreaker("concierge-webhook"),
		retry: resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
		},
		logger: logger,
	}
}

// Send relays the message and returns the webhook's reply. The webhook may
// answer with {"reply": ...}, {"message": ...} or a raw text body; all
// three are treated as the bot reply.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	if c.webhookURL == "" {
		return "", &domain.ValidationError{Field: "webhook_url", Message: "concierge webhook is not configured"}
	}

	var reply string
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.retry, func() error {
			var callErr error
			reply, callErr = c.post(ctx, msg)
			return callErr
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("concierge webhook circuit open", zap.String("conversation_id", msg.ConversationID))
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("relay concierge message: %w", err)
	}

	c.logger.Info("concierge message relayed",
		zap.String("conversation_id", msg.ConversationID),
		zap.Int("reply_len", len(reply)),
	)
	return reply, nil
}

func (c *Client) post(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal concierge message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return extractReply(raw), nil
}

// extractReply accepts the three response shapes the webhook may use.
func extractReply(raw []byte) string {
	var envelope struct {
		Reply   string `json:"reply"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Reply != "" {
			return envelope.Reply
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"agent-hub/domain/dto"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/configuration"
	"agent-hub/infrastructure/logger"
)

const (
	forwardTimeout      = 30 * time.Second
	emailForwardTimeout = 60 * time.Second
	triggerTimeout      = 5 * time.Second
)

// Client posts payloads to the external workflow engine webhooks.
type Client struct {
	httpClient *http.Client
	cfg        configuration.Engine
}

// NewEngineClient creates a client bound to the configured webhook URLs.
func NewEngineClient() repository.IEngine {
	return &Client{
		httpClient: &http.Client{},
		cfg:        configuration.C.Engine,
	}
}

func (c *Client) ForwardWhatsApp(ctx context.Context, payload *dto.WhatsAppForward) error {
	if c.cfg.WhatsAppWebhookURL == "" {
		return fmt.Errorf("whatsapp webhook URL is not configured")
	}
	return c.post(ctx, c.cfg.WhatsAppWebhookURL, forwardTimeout, payload)
}

func (c *Client) ForwardInstagram(ctx context.Context, payload *dto.InstagramForward) error {
	if c.cfg.InstagramWebhookURL == "" {
		return fmt.Errorf("instagram webhook URL is not configured")
	}
	return c.post(ctx, c.cfg.InstagramWebhookURL, forwardTimeout, payload)
}

func (c *Client) ForwardEmail(ctx context.Context, payload *dto.EmailForward) error {
	if c.cfg.EmailWebhookURL == "" {
		return fmt.Errorf("email webhook URL is not configured")
	}
	return c.post(ctx, c.cfg.EmailWebhookURL, emailForwardTimeout, payload)
}

// TriggerAgentRun fires the prospecting workflow and returns as soon as
// the request is on the wire. The workflow runs for minutes, so a client
// timeout here means the hand-off succeeded, not that it failed.
func (c *Client) TriggerAgentRun(ctx context.Context, payload *dto.AgentRunPayload) error {
	err := c.post(ctx, c.cfg.ProspectWebhookURL, triggerTimeout, payload)
	if err != nil && isTimeout(err) {
		logger.GetLogger().WithField("agent_id", payload.AgentID).Info("Prospecting workflow triggered, response pending")
		return nil
	}
	return err
}

func (c *Client) TriggerVideoGeneration(ctx context.Context, payload *dto.VideoGeneratePayload) error {
	if c.cfg.VideoWebhookURL == "" {
		return fmt.Errorf("video webhook URL is not configured")
	}
	return c.post(ctx, c.cfg.VideoWebhookURL, forwardTimeout, payload)
}

func (c *Client) post(ctx context.Context, url string, timeout time.Duration, payload interface{}) error {
	if url == "" {
		return fmt.Errorf("engine webhook URL is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode engine payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.WebhookSecret != "" {
		req.Header.Set("X-Webhook-Secret", c.cfg.WebhookSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("engine returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

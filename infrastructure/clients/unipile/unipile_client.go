package unipile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agent-hub/domain/repository"
	"agent-hub/infrastructure/configuration"
)

// hostedLinkExpiry is how long a generated connect link stays valid.
const hostedLinkExpiry = time.Hour

type hostedLinkRequest struct {
	Type      string   `json:"type"`
	Providers []string `json:"providers"`
	APIURL    string   `json:"api_url"`
	ExpiresOn string   `json:"expiresOn"`
	NotifyURL string   `json:"notify_url"`
	Name      string   `json:"name"`
}

type hostedLinkResponse struct {
	Object string `json:"object"`
	URL    string `json:"url"`
}

// Client talks to the Unipile messaging aggregator REST API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	notifyURL  string
}

func NewUnipileClient() repository.IUnipile {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     configuration.C.Unipile.APIURL,
		apiKey:     configuration.C.Unipile.APIKey,
		notifyURL:  configuration.C.App.PublicURL + "/api/webhooks/unipile",
	}
}

// CreateHostedAuthLink asks Unipile for a hosted auth page the store
// owner opens to connect their Instagram account. The account-connected
// event lands on the notify URL once they finish.
func (c *Client) CreateHostedAuthLink(ctx context.Context, storeName string) (string, string, error) {
	if c.apiURL == "" || c.apiKey == "" {
		return "", "", fmt.Errorf("unipile credentials are not configured")
	}

	expiresOn := time.Now().UTC().Add(hostedLinkExpiry).Format("2006-01-02T15:04:05.000Z")
	body, err := json.Marshal(hostedLinkRequest{
		Type:      "create",
		Providers: []string{"INSTAGRAM"},
		APIURL:    c.apiURL,
		ExpiresOn: expiresOn,
		NotifyURL: c.notifyURL,
		Name:      storeName,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode hosted link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/v1/hosted/accounts/link", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("unipile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", fmt.Errorf("unipile returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var link hostedLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return "", "", fmt.Errorf("failed to decode hosted link response: %w", err)
	}
	if link.URL == "" {
		return "", "", fmt.Errorf("unipile response did not include a link URL")
	}
	return link.URL, expiresOn, nil
}

func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	if c.apiURL == "" || c.apiKey == "" {
		return fmt.Errorf("unipile credentials are not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiURL+"/api/v1/accounts/"+accountID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unipile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unipile returned status %d deleting account %s", resp.StatusCode, accountID)
	}
	return nil
}

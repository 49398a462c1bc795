package control

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ibkr-trader/internal/engine"
)

// ControlClient talks to a running trader's control listener.
type ControlClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a control client for the given listener address.
func NewClient(addr string) *ControlClient {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &ControlClient{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Status fetches the scheduler status snapshot.
func (c *ControlClient) Status(ctx context.Context) (*engine.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("is the trader running? %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status request failed: %s", resp.Status)
	}
	var st engine.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}
	return &st, nil
}

// Trigger requests manual execution of a strategy.
func (c *ControlClient) Trigger(ctx context.Context, strategyID string) error {
	return c.post(ctx, "/trigger/"+strategyID)
}

// RequestClose asks the trader to close the open position.
func (c *ControlClient) RequestClose(ctx context.Context) error {
	return c.post(ctx, "/close")
}

func (c *ControlClient) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("is the trader running? %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

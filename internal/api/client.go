// Package api is an HTTP client for an agentapi server fronting a terminal agent.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Agent status values reported by agentapi.
const (
	StatusRunning = "running"
	StatusStable  = "stable"
)

// Client is an HTTP client for AgentAPI
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Status represents the agent status response
type Status struct {
	Status string `json:"status"` // "running" or "stable"
}

// Message represents a message to send to the agent
type Message struct {
	Content string `json:"content"`
	Type    string `json:"type"` // "user" or "raw"
}

// ConversationMessage represents a message in the conversation history
type ConversationMessage struct {
	ID      int    `json:"id"`
	Role    string `json:"role"` // "user" or "agent"
	Content string `json:"content"`
	Time    string `json:"time,omitempty"`
}

type messagesResponse struct {
	Messages []ConversationMessage `json:"messages"`
}

// NewClient creates a client for an agentapi server on localhost.
func NewClient(port int) *Client {
	return NewClientURL(fmt.Sprintf("http://localhost:%d", port))
}

// NewClientURL creates a client for the server at baseURL.
func NewClientURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollInterval: time.Second,
	}
}

// WithPollInterval sets how often the wait helpers poll /status.
func (c *Client) WithPollInterval(d time.Duration) *Client {
	if d > 0 {
		c.pollInterval = d
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// GetStatus returns the current agent status
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.get(ctx, "/status", &status); err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return &status, nil
}

// SendMessage sends a message to the agent
func (c *Client) SendMessage(ctx context.Context, content string, msgType string) error {
	body, err := json.Marshal(Message{Content: content, Type: msgType})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("message request failed (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// GetMessages returns the conversation history
func (c *Client) GetMessages(ctx context.Context) ([]ConversationMessage, error) {
	var out messagesResponse
	if err := c.get(ctx, "/messages", &out); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return out.Messages, nil
}

// LastAgentMessage returns the most recent message authored by the agent.
func (c *Client) LastAgentMessage(ctx context.Context) (string, error) {
	msgs, err := c.GetMessages(ctx)
	if err != nil {
		return "", err
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "agent" {
			return msgs[i].Content, nil
		}
	}
	return "", fmt.Errorf("no agent message in conversation")
}

// WaitForHealthy waits until the agent responds to status requests
func (c *Client) WaitForHealthy(ctx context.Context, timeout time.Duration) error {
	return c.poll(ctx, timeout, "healthy", func(s *Status, err error) (bool, error) {
		return err == nil, nil
	})
}

// WaitForStable waits until the agent is in stable state
func (c *Client) WaitForStable(ctx context.Context, timeout time.Duration) error {
	return c.poll(ctx, timeout, "stable state", func(s *Status, err error) (bool, error) {
		return err == nil && s.Status == StatusStable, nil
	})
}

// WaitForCompletion waits for the agent to go from running back to stable.
// Too many consecutive status failures mean the process died.
func (c *Client) WaitForCompletion(ctx context.Context, timeout time.Duration) error {
	const maxConsecutiveErrors = 30
	wasRunning := false
	consecutiveErrors := 0

	return c.poll(ctx, timeout, "completion", func(s *Status, err error) (bool, error) {
		if err != nil {
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return false, fmt.Errorf("agent API unreachable after %d consecutive failures - process likely crashed", consecutiveErrors)
			}
			return false, nil
		}
		consecutiveErrors = 0
		if s.Status == StatusRunning {
			wasRunning = true
		}
		return wasRunning && s.Status == StatusStable, nil
	})
}

// IsRunning returns true if the agent is currently processing
func (c *Client) IsRunning(ctx context.Context) (bool, error) {
	status, err := c.GetStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.Status == StatusRunning, nil
}

// poll calls GetStatus until done reports true. A zero timeout polls until ctx ends.
func (c *Client) poll(ctx context.Context, timeout time.Duration, what string, done func(*Status, error) (bool, error)) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.GetStatus(ctx)
		ok, fatal := done(status, err)
		if fatal != nil {
			return fatal
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", what)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request %s failed (%d): %s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

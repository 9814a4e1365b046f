package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"
)

// Client is the HTTP client for the bot's admin API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new admin API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Entry is one stored entry
type Entry struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Handle string `json:"handle,omitempty"`
}

// Chat is one conversation as returned by the API
type Chat struct {
	ChatID  string  `json:"chat_id"`
	State   string  `json:"state"`
	Entries []Entry `json:"entries"`
}

// Job is the liveness of one scheduled job
type Job struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
	NextRun string `json:"next_run"` // RFC 3339
}

// SnapshotResult is the outcome of a save or load
type SnapshotResult struct {
	At      string `json:"at"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Bytes   int    `json:"bytes"`
	Records int    `json:"records"`
}

// SnapshotHealth summarizes persistence
type SnapshotHealth struct {
	Location            string          `json:"location"`
	LastSave            *SnapshotResult `json:"last_save,omitempty"`
	LastSuccessfulSave  string          `json:"last_successful_save,omitempty"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	LastLoad            *SnapshotResult `json:"last_load,omitempty"`
}

// ChatSummary is the state of one conversation in a status report
type ChatSummary struct {
	ChatID  string `json:"chat_id"`
	State   string `json:"state"`
	Entries int    `json:"entries"`
}

// Status is the bot's status report
type Status struct {
	GeneratedAt    string         `json:"generated_at"`
	EstimatedBytes int64          `json:"estimated_bytes"`
	CeilingBytes   int64          `json:"ceiling_bytes"`
	UsagePercent   float64        `json:"usage_percent"`
	Records        int            `json:"records"`
	Jobs           []Job          `json:"jobs"`
	Snapshot       SnapshotHealth `json:"snapshot"`
	Chats          []ChatSummary  `json:"chats"`
}

// Health is the health endpoint response
type Health struct {
	Status string `json:"status"`
	Jobs   []Job  `json:"jobs"`
}

// DueReminder is one reminder that would be sent
type DueReminder struct {
	ChatID string `json:"chat_id"`
	Entry  Entry  `json:"entry"`
	Text   string `json:"text"`
}

// ============ Status ============

// GetStatus gets the status report
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.get(ctx, "/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetHealth gets job liveness. A degraded bot answers 503 with the same body.
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var health Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &health, http.StatusOK, http.StatusServiceUnavailable)
	if err != nil {
		return nil, err
	}
	return &health, nil
}

// ============ Chats ============

// GetChat gets one conversation
func (c *Client) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	var chat Chat
	if err := c.get(ctx, "/api/chats/"+url.PathEscape(chatID), &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ============ Reminders ============

// DueReminders lists reminders due on date (YYYY-MM-DD, empty for today)
func (c *Client) DueReminders(ctx context.Context, date string) ([]DueReminder, error) {
	path := "/api/reminders/due"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var result struct {
		Due []DueReminder `json:"due"`
	}
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Due, nil
}

// ============ Backup ============

// Backup triggers a snapshot write
func (c *Client) Backup(ctx context.Context) (*SnapshotResult, error) {
	var result SnapshotResult
	if err := c.do(ctx, http.MethodPost, "/api/backup", struct{}{}, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// ============ HTTP Helpers ============

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result, http.StatusOK)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, accept ...int) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if !slices.Contains(accept, resp.StatusCode) {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Package apiclient is the HTTP boundary to the central directory/log
// service. Two operations exist: fetch the full collaborator directory
// and submit one access event. Anything other than a 2xx — timeouts
// and refused connections included — is a failure the caller handles
// by falling back to cache or outbox.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given base URL (e.g.
// "http://192.168.0.100:5000"). When token is non-empty it is sent as
// the Authorization header on every request.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// collaborator is the remote payload. Deployed instances disagree on
// the name field and on badge_id being a number or a string, so all
// variants are accepted.
type collaborator struct {
	BadgeID         json.RawMessage `json:"badge_id"`
	Name            string          `json:"name"`
	Nome            string          `json:"nome"`
	Username        string          `json:"username"`
	PermissionLevel *int            `json:"permission_level"`
}

// FetchDirectory retrieves the full collaborator directory.
// permission_level >= 1 means authorized; a missing level counts as 1.
func (c *Client) FetchDirectory(ctx context.Context) ([]types.DirectoryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/collaborators", nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch collaborators: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch collaborators: unexpected status %d", resp.StatusCode)
	}

	var payload []collaborator
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode collaborators: %w", err)
	}

	entries := make([]types.DirectoryEntry, 0, len(payload))
	for _, col := range payload {
		level := 1
		if col.PermissionLevel != nil {
			level = *col.PermissionLevel
		}
		entries = append(entries, types.DirectoryEntry{
			BadgeID:    badgeString(col.BadgeID),
			Name:       displayName(col),
			Authorized: level >= 1,
		})
	}
	return entries, nil
}

type logPayload struct {
	EventID   string `json:"event_id"`
	BadgeID   string `json:"badge_id"`
	EventType string `json:"event_type"`
	Result    string `json:"result"`
	Reason    string `json:"reason"`
}

// SubmitEvent posts one access event to the remote log sink. Only a
// 2xx counts as delivered.
func (c *Client) SubmitEvent(ctx context.Context, ev types.AccessEvent) error {
	body, err := json.Marshal(logPayload{
		EventID:   ev.EventID,
		BadgeID:   ev.BadgeID,
		EventType: string(ev.Type),
		Result:    string(ev.Result),
		Reason:    ev.Reason,
	})
	if err != nil {
		return fmt.Errorf("marshal log: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logs", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build log request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push log: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push log: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// badgeString normalizes a badge id to its canonical decimal string.
// Numeric ids lose any float formatting; ids that are not integers at
// all keep their original representation.
func badgeString(raw json.RawMessage) string {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return s
	}
	return strings.TrimSpace(string(raw))
}

func displayName(col collaborator) string {
	for _, n := range []string{col.Name, col.Nome, col.Username} {
		if strings.TrimSpace(n) != "" {
			return n
		}
	}
	return "Unknown"
}

// Package smoke drives a running server end to end over HTTP and verifies
// that the scan/player back-references stay symmetric.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultClientTimeout = 10 * time.Second

// Client is a thin JSON client for the scanmark HTTP API.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient creates a client for a server at base, e.g. "http://localhost:8090".
func NewClient(base string) *Client {
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: defaultClientTimeout},
	}
}

// Player mirrors the API's player shape.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ScanID string `json:"scan_id,omitempty"`
}

// Scan mirrors the API's scan shape.
type Scan struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/events", map[string]string{"name": name}, nil)
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+name, nil, nil)
}

// SetPlayers replaces the event's player set.
func (c *Client) SetPlayers(ctx context.Context, event string, players []Player) error {
	return c.do(ctx, http.MethodPut, "/events/"+event+"/players", players, nil)
}

// ListPlayers returns the event's players.
func (c *Client) ListPlayers(ctx context.Context, event string) ([]Player, error) {
	var players []Player
	err := c.do(ctx, http.MethodGet, "/events/"+event+"/players", nil, &players)
	return players, err
}

// PostScan uploads a payload and returns the new scan id.
func (c *Client) PostScan(ctx context.Context, event string, data []byte) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/events/"+event+"/scans", map[string][]byte{"data": data}, &out)
	return out.ID, err
}

// ListScans returns the event's scans without payloads.
func (c *Client) ListScans(ctx context.Context, event string) ([]Scan, error) {
	var scans []Scan
	err := c.do(ctx, http.MethodGet, "/events/"+event+"/scans", nil, &scans)
	return scans, err
}

// MarkScan assigns or clears a scan's owner.
func (c *Client) MarkScan(ctx context.Context, event, scanID, playerID string) error {
	return c.do(ctx, http.MethodPut, "/events/"+event+"/scans/"+scanID+"/mark",
		map[string]string{"player_id": playerID}, nil)
}

// CheckEvent runs the server-side consistency audit.
func (c *Client) CheckEvent(ctx context.Context, event string) ([]string, error) {
	var out struct {
		Violations []string `json:"violations"`
	}
	err := c.do(ctx, http.MethodGet, "/events/"+event+"/check", nil, &out)
	return out.Violations, err
}

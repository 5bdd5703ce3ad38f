package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/arena-engine/pkg/arena"
)

const defaultTimeout = 10 * time.Second

// ItemParser matches recognized text against known item names.
// *assets.Assets implements it.
type ItemParser interface {
	ParseItem(text string) (string, bool)
}

// Client talks to the agent that owns the game window: it reads the screen and
// sends mouse and keyboard input. It implements arena.Perception and arena.Actuator.
// Failed calls are logged and come back as zero values.
type Client struct {
	baseURL    string
	httpClient *http.Client
	items      ItemParser
	logger     *slog.Logger
	ctx        context.Context
}

var (
	_ arena.Perception = (*Client)(nil)
	_ arena.Actuator   = (*Client)(nil)
)

// NewClient creates a bridge client for the agent at baseURL
func NewClient(baseURL string, items ItemParser, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		items:  items,
		logger: logger,
		ctx:    context.Background(),
	}
}

// WithContext returns a copy whose calls are bound to ctx
func (c *Client) WithContext(ctx context.Context) *Client {
	cp := *c
	cp.ctx = ctx
	return &cp
}

// Ping checks the agent is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.WithContext(ctx).do(http.MethodGet, "/health", nil, nil)
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(c.ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bridge %s %s failed with status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// get decodes a GET response, logging failures.
func (c *Client) get(path string, out any) bool {
	if err := c.do(http.MethodGet, path, nil, out); err != nil {
		c.logger.Warn("Bridge read failed", "path", path, "error", err)
		return false
	}
	return true
}

// send posts an input command, logging failures.
func (c *Client) send(path string, in any) {
	if err := c.do(http.MethodPost, path, in, nil); err != nil {
		c.logger.Warn("Bridge input failed", "path", path, "error", err)
	}
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/internal/handlers"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/pkg/arena"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// readBody reads a response and turns an unexpected status into an error
func readBody(resp *http.Response, want int, what string) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to %s: %s", what, errorResp.Error)
	}
	return body, nil
}

func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*arena.Session, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := readBody(resp, http.StatusOK, "get session")
	if err != nil {
		return nil, err
	}

	var s arena.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &s, nil
}

func createSession(client *http.Client, baseURL string, compFile string) (*arena.Session, error) {
	jsonData, err := json.Marshal(handlers.CreateSessionRequest{Comp: compFile})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := readBody(resp, http.StatusCreated, "create session")
	if err != nil {
		return nil, err
	}

	var s arena.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &s, nil
}

func listComps(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/comps")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := readBody(resp, http.StatusOK, "list comps")
	if err != nil {
		return nil, nil, err
	}

	var compMap map[string]string
	if err := json.Unmarshal(body, &compMap); err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(compMap))
	for name := range compMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, compMap, nil
}

func enqueuePhase(client *http.Client, baseURL string, sessionID uuid.UUID, phase string) (*handlers.EnqueuePhaseResponse, error) {
	jsonData, err := json.Marshal(handlers.EnqueuePhaseRequest{Phase: phase})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/phases", baseURL, sessionID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := readBody(resp, http.StatusAccepted, "queue "+phase)
	if err != nil {
		return nil, err
	}

	var out handlers.EnqueuePhaseResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

func getSessionLog(client *http.Client, baseURL string, sessionID uuid.UUID, limit int) ([]string, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s/log?%s", baseURL, sessionID, q.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := readBody(resp, http.StatusOK, "read session log")
	if err != nil {
		return nil, err
	}

	var lines []string
	if err := json.Unmarshal(body, &lines); err != nil {
		return nil, fmt.Errorf("failed to parse session log: %w", err)
	}
	return lines, nil
}

// SSEEvent is one event read off the session stream
type SSEEvent struct {
	Type  string
	Event *events.Event
}

// listenToSSE connects to the session event stream and forwards events to eventChan
func listenToSSE(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, eventChan chan<- SSEEvent) error {
	endpoint := fmt.Sprintf("%s/v1/events/sessions/%s", baseURL, sessionID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to SSE: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SSE connection failed with status %d: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	var current SSEEvent

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			// Empty line signals end of event
			if current.Type != "" {
				select {
				case eventChan <- current:
				case <-ctx.Done():
					return ctx.Err()
				}
				current = SSEEvent{}
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			current.Type = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if ev, err := events.ParseEvent(strings.TrimPrefix(line, "data: ")); err == nil {
				current.Event = ev
			}
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error reading SSE stream: %w", err)
	}
	return nil
}

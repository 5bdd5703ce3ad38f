package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/internal/handlers"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/pkg/arena"
)

const (
	// PhaseTimeout is max time to wait for a queued phase to finish
	PhaseTimeout = 30 * time.Second
)

// CreateSession starts a session from a comp file
func CreateSession(ctx context.Context, client *http.Client, baseURL string, comp string) (*arena.Session, error) {
	reqBody, err := json.Marshal(handlers.CreateSessionRequest{Comp: comp})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/sessions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send session request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sessions endpoint returned %d (expected 201): %s", resp.StatusCode, string(body))
	}

	var s arena.Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// EnqueuePhase queues a phase and returns its request_id
func EnqueuePhase(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, phase string) (string, error) {
	reqBody, err := json.Marshal(handlers.EnqueuePhaseRequest{Phase: phase})
	if err != nil {
		return "", fmt.Errorf("failed to marshal phase request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/phases", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create phase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send phase request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("phases endpoint returned %d (expected 202): %s", resp.StatusCode, string(body))
	}

	var out handlers.EnqueuePhaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse phase response: %w", err)
	}
	return out.RequestID, nil
}

// GetSession retrieves the current session
func GetSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*arena.Session, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send session request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("session endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var s arena.Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// StreamEvents opens the session event stream and forwards parsed events until ctx ends.
// It returns once the stream is connected.
func StreamEvents(ctx context.Context, baseURL string, sessionID uuid.UUID) (<-chan *events.Event, error) {
	url := fmt.Sprintf("%s/v1/events/sessions/%s", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("event stream returned %d: %s", resp.StatusCode, string(body))
	}

	out := make(chan *events.Event, 32)
	go func() {
		defer close(out)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			ev, err := events.ParseEvent(data)
			if err != nil || ev.Type == "" {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// WaitForPhase waits for the completed or failed event of requestID
func WaitForPhase(ctx context.Context, stream <-chan *events.Event, requestID string) (*events.Event, error) {
	timeout := time.After(PhaseTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, fmt.Errorf("timeout waiting for phase %s (waited %v)", requestID, PhaseTimeout)
		case ev, ok := <-stream:
			if !ok {
				return nil, fmt.Errorf("event stream closed while waiting for %s", requestID)
			}
			if ev.RequestID != requestID {
				continue
			}
			switch ev.Type {
			case events.EventTypePhaseCompleted, events.EventTypePhaseFailed:
				return ev, nil
			}
		}
	}
}

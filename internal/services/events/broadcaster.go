package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypePhaseQueued    EventType = "phase.queued"
	EventTypePhaseStarted   EventType = "phase.started"
	EventTypePhaseCompleted EventType = "phase.completed"
	EventTypePhaseFailed    EventType = "phase.failed"
	EventTypeLabels         EventType = "labels"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel returns the pub/sub channel for a session's events
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("arena-events:%s", sessionID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for live viewers
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishPhaseQueued publishes a phase.queued event
func (b *Broadcaster) PublishPhaseQueued(ctx context.Context, sessionID uuid.UUID, requestID string, phase string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypePhaseQueued,
		RequestID: requestID,
		Data:      map[string]any{"phase": phase},
	})
}

// PublishPhaseStarted publishes a phase.started event
func (b *Broadcaster) PublishPhaseStarted(ctx context.Context, sessionID uuid.UUID, requestID string, phase string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypePhaseStarted,
		RequestID: requestID,
		Data:      map[string]any{"phase": phase},
	})
}

// PublishPhaseCompleted publishes a phase.completed event with a session summary
func (b *Broadcaster) PublishPhaseCompleted(ctx context.Context, sessionID uuid.UUID, requestID string, phase string, result map[string]any) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypePhaseCompleted,
		RequestID: requestID,
		Data: map[string]any{
			"phase":  phase,
			"result": result,
		},
	})
}

// PublishPhaseFailed publishes a phase.failed event
func (b *Broadcaster) PublishPhaseFailed(ctx context.Context, sessionID uuid.UUID, requestID string, phase string, errorMsg string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypePhaseFailed,
		RequestID: requestID,
		Data: map[string]any{
			"phase": phase,
			"error": errorMsg,
		},
	})
}

// PublishLabels publishes the unit labels an overlay should draw
func (b *Broadcaster) PublishLabels(ctx context.Context, sessionID uuid.UUID, labels []arena.Label) error {
	return b.publish(ctx, sessionID, Event{
		Type: EventTypeLabels,
		Data: map[string]any{"labels": labels},
	})
}

// Subscribe listens on a session's channel. Callers close the returned PubSub.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sessionID))
}

// publish publishes an event to the session-specific channel
func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	event.SessionID = sessionID.String()
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)

	return nil
}

// ParseEvent decodes a pub/sub payload
func ParseEvent(payload string) (*Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return &e, nil
}

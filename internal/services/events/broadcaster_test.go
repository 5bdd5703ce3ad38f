package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/jwebster45206/arena-engine/pkg/screen"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBroadcaster(rdb, logger), mr
}

func receive(t *testing.T, ps *redis.PubSub) *Event {
	t.Helper()
	select {
	case msg := <-ps.Channel():
		e, err := ParseEvent(msg.Payload)
		require.NoError(t, err)
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBroadcaster_PhaseEvents(t *testing.T) {
	b, _ := setupBroadcaster(t)
	ctx := context.Background()
	sessionID := uuid.New()

	ps := b.Subscribe(ctx, sessionID)
	defer ps.Close()
	_, err := ps.Receive(ctx)
	require.NoError(t, err, "subscription confirmed")

	require.NoError(t, b.PublishPhaseStarted(ctx, sessionID, "req-1", "buy"))
	require.NoError(t, b.PublishPhaseCompleted(ctx, sessionID, "req-1", "buy", map[string]any{"round": 3}))
	require.NoError(t, b.PublishPhaseFailed(ctx, sessionID, "req-2", "move", "boom"))

	started := receive(t, ps)
	assert.Equal(t, EventTypePhaseStarted, started.Type)
	assert.Equal(t, "req-1", started.RequestID)
	assert.Equal(t, sessionID.String(), started.SessionID)
	assert.Equal(t, "buy", started.Data["phase"])

	completed := receive(t, ps)
	assert.Equal(t, EventTypePhaseCompleted, completed.Type)
	result, ok := completed.Data["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), result["round"])

	failed := receive(t, ps)
	assert.Equal(t, EventTypePhaseFailed, failed.Type)
	assert.Equal(t, "boom", failed.Data["error"])
}

func TestLabelSink(t *testing.T) {
	b, _ := setupBroadcaster(t)
	ctx := context.Background()
	sessionID := uuid.New()

	ps := b.Subscribe(ctx, sessionID)
	defer ps.Close()
	_, err := ps.Receive(ctx)
	require.NoError(t, err)

	sink := NewLabelSink(ctx, b, sessionID)
	sink.PublishLabels([]arena.Label{{Text: "Miss Fortune", Coord: screen.Vec2{X: 10, Y: 20}}})

	e := receive(t, ps)
	assert.Equal(t, EventTypeLabels, e.Type)
	labels, ok := e.Data["labels"].([]any)
	require.True(t, ok)
	require.Len(t, labels, 1)
	assert.Equal(t, "Miss Fortune", labels[0].(map[string]any)["text"])
}

func TestBroadcaster_PublishError(t *testing.T) {
	b, mr := setupBroadcaster(t)
	mr.Close()

	err := b.PublishPhaseQueued(context.Background(), uuid.New(), "req", "buy")
	assert.Error(t, err)
}

func TestParseEvent_Invalid(t *testing.T) {
	_, err := ParseEvent("{")
	assert.Error(t, err)
}

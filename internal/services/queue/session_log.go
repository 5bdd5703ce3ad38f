package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// maxLogEntries caps each session's log; older lines are trimmed.
const maxLogEntries = 200

// SessionLog keeps a short per-session history of completed phases
type SessionLog struct {
	client *Client
	ttl    time.Duration
}

// NewSessionLog creates a session log whose keys expire with the session
func NewSessionLog(client *Client, ttl time.Duration) *SessionLog {
	return &SessionLog{
		client: client,
		ttl:    ttl,
	}
}

func logKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("arena-log:%s", sessionID.String())
}

// Append adds a line to the end of the session's log
func (sl *SessionLog) Append(ctx context.Context, sessionID uuid.UUID, line string) error {
	key := logKey(sessionID)

	pipe := sl.client.rdb.TxPipeline()
	pipe.RPush(ctx, key, line)
	pipe.LTrim(ctx, key, -maxLogEntries, -1)
	if sl.ttl > 0 {
		pipe.Expire(ctx, key, sl.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		sl.client.logger.Error("Failed to append session log",
			"error", err,
			"session_id", sessionID.String(),
			"key", key)
		return fmt.Errorf("failed to append session log: %w", err)
	}
	return nil
}

// Recent returns the newest limit lines, oldest first. limit <= 0 returns everything.
func (sl *SessionLog) Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]string, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	lines, err := sl.client.rdb.LRange(ctx, logKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session log: %w", err)
	}
	return lines, nil
}

// Clear removes the session's log
func (sl *SessionLog) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := sl.client.rdb.Del(ctx, logKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session log: %w", err)
	}
	return nil
}

// Depth returns the number of lines in the session's log
func (sl *SessionLog) Depth(ctx context.Context, sessionID uuid.UUID) (int, error) {
	count, err := sl.client.rdb.LLen(ctx, logKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get session log depth: %w", err)
	}
	return int(count), nil
}

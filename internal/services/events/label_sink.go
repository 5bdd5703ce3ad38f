package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/arena"
)

// LabelSink publishes an arena's labels on its session channel.
type LabelSink struct {
	ctx         context.Context
	broadcaster *Broadcaster
	sessionID   uuid.UUID
}

var _ arena.StatusSink = (*LabelSink)(nil)

// NewLabelSink binds the broadcaster to one session. ctx bounds every publish.
func NewLabelSink(ctx context.Context, b *Broadcaster, sessionID uuid.UUID) *LabelSink {
	return &LabelSink{ctx: ctx, broadcaster: b, sessionID: sessionID}
}

// PublishLabels never fails; the broadcaster logs publish errors.
func (s *LabelSink) PublishLabels(labels []arena.Label) {
	_ = s.broadcaster.PublishLabels(s.ctx, s.sessionID, labels)
}

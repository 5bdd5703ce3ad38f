package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/internal/logger"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/internal/services/queue"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	queuePkg "github.com/jwebster45206/arena-engine/pkg/queue"
	"github.com/jwebster45206/arena-engine/pkg/storage"
)

// Agent reads the game client and drives its input
type Agent interface {
	arena.Perception
	arena.Actuator
}

// AgentFactory returns an agent whose calls are bound to ctx
type AgentFactory func(ctx context.Context) Agent

// PhaseProcessor runs one phase of the round lifecycle against a stored session
type PhaseProcessor struct {
	storage     storage.Storage
	agents      AgentFactory
	broadcaster *events.Broadcaster
	sessionLog  *queue.SessionLog
	reset       arena.HeadlinerReset
	sleep       func(time.Duration)
	logger      *slog.Logger
}

// NewPhaseProcessor creates a new phase processor
func NewPhaseProcessor(storage storage.Storage, agents AgentFactory, logger *slog.Logger) *PhaseProcessor {
	return &PhaseProcessor{
		storage: storage,
		agents:  agents,
		reset:   arena.HeadlinerResetSession,
		logger:  logger,
	}
}

// WithBroadcaster publishes labels on the session channel
func (p *PhaseProcessor) WithBroadcaster(b *events.Broadcaster) *PhaseProcessor {
	p.broadcaster = b
	return p
}

// WithSessionLog records a line per completed phase
func (p *PhaseProcessor) WithSessionLog(l *queue.SessionLog) *PhaseProcessor {
	p.sessionLog = l
	return p
}

// WithHeadlinerReset sets when the headliner flag is cleared
func (p *PhaseProcessor) WithHeadlinerReset(reset arena.HeadlinerReset) *PhaseProcessor {
	p.reset = reset
	return p
}

// WithSleep replaces the arena's settle delay
func (p *PhaseProcessor) WithSleep(sleep func(time.Duration)) *PhaseProcessor {
	p.sleep = sleep
	return p
}

// Process loads the session, runs the phase and saves the result.
// It returns a summary of the session after the phase.
func (p *PhaseProcessor) Process(ctx context.Context, req *queuePkg.PhaseRequest) (map[string]any, error) {
	a, err := p.arenaFor(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if err := RunPhase(a, req.Phase); err != nil {
		return nil, err
	}

	s := a.Session()
	if err := p.storage.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if p.sessionLog != nil {
		line := fmt.Sprintf("round %d: %s (board %d/%d, health %d)", s.Round, req.Phase, s.BoardSize(), s.Level, a.Health())
		if err := p.sessionLog.Append(ctx, s.ID, line); err != nil {
			p.logger.Warn("Failed to record phase", "error", err, "session_id", s.ID.String())
		}
	}

	return Summary(a), nil
}

func (p *PhaseProcessor) arenaFor(ctx context.Context, sessionID uuid.UUID) (*arena.Arena, error) {
	s, err := p.storage.LoadSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	c, err := p.storage.GetComp(ctx, s.Comp)
	if err != nil {
		return nil, fmt.Errorf("failed to load comp %q: %w", s.Comp, err)
	}
	data, err := p.storage.GetAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}

	agent := p.agents(ctx)
	a := arena.New(s, agent, agent, c, data, logger.WithSession(p.logger, s.ID.String())).
		WithHeadlinerReset(p.reset)
	if p.sleep != nil {
		a.WithSleep(p.sleep)
	}
	if p.broadcaster != nil {
		a.WithStatusSink(events.NewLabelSink(ctx, p.broadcaster, s.ID))
	}
	return a, nil
}

// RunPhase dispatches a phase to the arena
func RunPhase(a *arena.Arena, phase queuePkg.Phase) error {
	switch phase {
	case queuePkg.PhaseNewRound:
		a.StartRound()
	case queuePkg.PhaseFixBench:
		a.FixBenchState()
	case queuePkg.PhaseBuy:
		a.SpendGold(false)
	case queuePkg.PhaseBuySpeedy:
		a.SpendGold(true)
	case queuePkg.PhaseBuyXP:
		a.BuyXPRound()
	case queuePkg.PhaseMove:
		a.MoveChampions()
	case queuePkg.PhaseReplaceUnknown:
		a.ReplaceUnknown()
	case queuePkg.PhaseFixUnknown:
		a.FixUnknown()
	case queuePkg.PhaseFinalComp:
		a.FinalCompCheck()
	case queuePkg.PhasePlaceItems:
		a.PlaceItems()
	case queuePkg.PhaseAugment:
		a.PickAugment()
	case queuePkg.PhaseAnvil:
		a.ClearAnvil()
	case queuePkg.PhaseBenchCleanup:
		a.BenchCleanup()
	case queuePkg.PhaseCrownCheck:
		a.TacticiansCrownCheck()
	case queuePkg.PhaseHealth:
		a.CheckHealth()
	case queuePkg.PhaseLabels:
		a.PublishLabels()
	default:
		return fmt.Errorf("unknown phase: %s", phase)
	}
	return nil
}

// Summary is the part of a session reported with phase.completed events
func Summary(a *arena.Arena) map[string]any {
	s := a.Session()
	return map[string]any{
		"round":        s.Round,
		"level":        s.Level,
		"health":       a.Health(),
		"damage_taken": s.DamageTaken,
		"board":        s.BoardNames(),
		"board_size":   s.BoardSize(),
		"unknown":      len(s.BoardUnknown),
		"aggressive":   s.Flags.AggressiveRoll,
		"headliner":    s.Flags.HeadlinerAcquired,
	}
}

package arena

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/arena-engine/pkg/comp"
	"github.com/jwebster45206/arena-engine/pkg/screen"
	"github.com/jwebster45206/d20"
)

// HeadlinerReset controls when the headliner-acquired flag is cleared.
type HeadlinerReset string

const (
	// HeadlinerResetSession keeps the flag for the whole game.
	HeadlinerResetSession HeadlinerReset = "session"
	// HeadlinerResetRound clears the flag in StartRound.
	HeadlinerResetRound HeadlinerReset = "round"
)

// ParseHeadlinerReset accepts "session" or "round"; empty means session.
func ParseHeadlinerReset(s string) (HeadlinerReset, error) {
	switch HeadlinerReset(s) {
	case "", HeadlinerResetSession:
		return HeadlinerResetSession, nil
	case HeadlinerResetRound:
		return HeadlinerResetRound, nil
	default:
		return "", fmt.Errorf("invalid headliner reset %q: must be session or round", s)
	}
}

const (
	// MaxLevel is the highest player level; experience is not bought there.
	MaxLevel = 10

	// AggressiveHealth is the health below which rolling turns aggressive.
	AggressiveHealth = 30

	// MaxHealth is a tactician's starting health.
	MaxHealth = 100
)

const (
	speedyMinGold     = 100
	aggressiveMinGold = 24
	standardMinGold   = 56
	xpCost            = 4
	headlinerSlot     = 4
	headlinerMultiple = 3
	anvilChoice       = 2
	textScale         = 3

	defaultAugmentPolls  = 30
	defaultShopRefreshes = 50

	anvilPrompt     = "ChooseOne"
	tacticiansCrown = "TacticiansCrown"
	attrDamageTaken = "damage_taken"
)

// Settle delays after input, letting the client redraw.
const (
	settleClick     = 100 * time.Millisecond
	settleBuy       = 200 * time.Millisecond
	settleUnknown   = 250 * time.Millisecond
	settleBench     = 500 * time.Millisecond
	settleAugment   = time.Second
	settleAnvilPick = time.Second
)

// Arena owns a Session and drives the game through its collaborators.
// It is not safe for concurrent use.
type Arena struct {
	session    *Session
	perception Perception
	actuator   Actuator
	policy     CompositionPolicy
	data       GameData
	sink       StatusSink
	layout     screen.Layout
	logger     *slog.Logger
	sleep      func(time.Duration)
	reset      HeadlinerReset
	tactician  *d20.Actor

	maxAugmentPolls  int
	maxShopRefreshes int
}

// New creates an Arena over an existing session. A nil session starts a new one
// from the composition's purchase targets. Callers scope logger to the session.
func New(session *Session, perception Perception, actuator Actuator, policy CompositionPolicy, data GameData, logger *slog.Logger) *Arena {
	if session == nil {
		session = NewSession(policy)
	}
	if session.Targets == nil {
		session.Targets = make(map[string]int)
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Arena{
		session:          session,
		perception:       perception,
		actuator:         actuator,
		policy:           policy,
		data:             data,
		layout:           screen.DefaultLayout(),
		logger:           logger,
		sleep:            time.Sleep,
		reset:            HeadlinerResetSession,
		maxAugmentPolls:  defaultAugmentPolls,
		maxShopRefreshes: defaultShopRefreshes,
	}
	a.tactician = a.newTactician()
	return a
}

// WithStatusSink sets where labels are published.
func (a *Arena) WithStatusSink(sink StatusSink) *Arena {
	a.sink = sink
	return a
}

// WithLayout overrides the default 1920x1080 coordinates.
func (a *Arena) WithLayout(layout screen.Layout) *Arena {
	a.layout = layout
	return a
}

// WithSleep replaces the settle-delay function. Tests pass a no-op.
func (a *Arena) WithSleep(sleep func(time.Duration)) *Arena {
	a.sleep = sleep
	return a
}

// WithHeadlinerReset sets when the headliner flag is cleared.
func (a *Arena) WithHeadlinerReset(reset HeadlinerReset) *Arena {
	a.reset = reset
	return a
}

// WithLimits bounds augment polling and shop refreshes. Non-positive values keep the defaults.
func (a *Arena) WithLimits(augmentPolls, shopRefreshes int) *Arena {
	if augmentPolls > 0 {
		a.maxAugmentPolls = augmentPolls
	}
	if shopRefreshes > 0 {
		a.maxShopRefreshes = shopRefreshes
	}
	return a
}

// Session returns the state the arena mutates.
func (a *Arena) Session() *Session {
	return a.session
}

// Tactician returns the actor tracking the player's health.
func (a *Arena) Tactician() *d20.Actor {
	return a.tactician
}

// Health is the tactician's current HP, falling back to the session's record.
func (a *Arena) Health() int {
	if a.tactician == nil {
		return a.session.Health
	}
	return a.tactician.HP()
}

// StartRound marks a round boundary.
func (a *Arena) StartRound() {
	a.session.Round++
	if a.reset == HeadlinerResetRound && a.session.Flags.HeadlinerAcquired {
		a.logger.Debug("Resetting headliner flag", "round", a.session.Round)
		a.session.Flags.HeadlinerAcquired = false
	}
	a.logger.Info("Round started", "round", a.session.Round)
}

// newTactician builds the health model from the persisted session. A session
// with no recorded health starts at full health.
func (a *Arena) newTactician() *d20.Actor {
	actor, err := d20.NewActor("tactician").
		WithHP(MaxHealth).
		WithAttribute(attrDamageTaken, a.session.DamageTaken).
		Build()
	if err != nil {
		a.logger.Warn("Failed to build tactician", "error", err)
		return nil
	}
	if hp := a.session.Health; hp > 0 && hp < MaxHealth {
		actor.SubHP(MaxHealth - hp)
	}
	return actor
}

// unitFor materializes a unit for a composition champion.
func (a *Arena) unitFor(name string, slot int) (*Unit, error) {
	ch, ok := a.policy.Champion(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", comp.ErrUnknownChampion, name)
	}
	return newUnit(name, ch.Items, slot, a.layout.Bench[slot], a.data.BoardSize(name), ch.FinalComp), nil
}

func (a *Arena) isTarget(name string) bool {
	_, ok := a.session.Targets[name]
	return ok
}

func (a *Arena) benchLoc(slot int) screen.Vec2 {
	return a.layout.Bench[slot]
}

func (a *Arena) boardLoc(hex int) screen.Vec2 {
	if hex < 0 || hex >= len(a.layout.Board) {
		return a.layout.Default
	}
	return a.layout.Board[hex]
}

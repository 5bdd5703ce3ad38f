package arena

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/screen"
)

// SlotKind tags what a bench slot holds.
type SlotKind string

const (
	SlotEmpty   SlotKind = ""
	SlotUnknown SlotKind = "unknown"
	SlotKnown   SlotKind = "known"
)

// BenchSlot is one bench position: empty, an occupant whose name could not be
// resolved (Hint holds whatever was read), or a known Unit.
type BenchSlot struct {
	Kind SlotKind `json:"kind,omitempty"`
	Hint string   `json:"hint,omitempty"`
	Unit *Unit    `json:"unit,omitempty"`
}

func emptySlot() BenchSlot { return BenchSlot{} }

func unknownSlot(hint string) BenchSlot {
	if hint == "" {
		hint = "?"
	}
	return BenchSlot{Kind: SlotUnknown, Hint: hint}
}

func knownSlot(u *Unit) BenchSlot { return BenchSlot{Kind: SlotKnown, Unit: u} }

func (b BenchSlot) IsEmpty() bool { return b.Kind == SlotEmpty }

func (b BenchSlot) IsUnknown() bool { return b.Kind == SlotUnknown }

func (b BenchSlot) label() string {
	switch b.Kind {
	case SlotKnown:
		if b.Unit != nil {
			return b.Unit.Name
		}
	case SlotUnknown:
		return b.Hint
	}
	return ""
}

// Known returns the unit in the slot, if its identity is known.
func (b BenchSlot) Known() (*Unit, bool) {
	if b.Kind != SlotKnown || b.Unit == nil {
		return nil, false
	}
	return b.Unit, true
}

// UnknownPlacement is an unidentified unit parked on a board hex.
type UnknownPlacement struct {
	Name string `json:"name"`
	Hex  int    `json:"hex"`
}

// Flags are the one-shot and latched decisions of a session.
type Flags struct {
	AugmentRerollUsed bool `json:"augment_reroll_used"`
	AggressiveRoll    bool `json:"aggressive_roll"`
	HeadlinerAcquired bool `json:"headliner_acquired"`
}

// Session is the whole mutable model of one game.
type Session struct {
	ID           uuid.UUID                    `json:"id"`
	Comp         string                       `json:"comp,omitempty"`
	Round        int                          `json:"round"`
	Level        int                          `json:"level"`
	Health       int                          `json:"health"`
	DamageTaken  int                          `json:"damage_taken"`
	Bench        [screen.BenchSlots]BenchSlot `json:"bench"`
	AnvilFree    [screen.BenchSlots]bool      `json:"anvil_free"`
	Board        []*Unit                      `json:"board"`
	BoardUnknown []UnknownPlacement           `json:"board_unknown"`
	Targets      map[string]int               `json:"targets"`
	Items        []string                     `json:"items"`
	CrownSlots   int                          `json:"crown_slots"` // extra board slots granted by Tactician's Crown
	Flags        Flags                        `json:"flags"`
	UpdatedAt    time.Time                    `json:"updated_at"`
}

// NewSession starts an empty session whose purchase targets come from the composition.
func NewSession(policy CompositionPolicy) *Session {
	s := &Session{
		ID:           uuid.New(),
		Board:        make([]*Unit, 0),
		BoardUnknown: make([]UnknownPlacement, 0),
		Targets:      make(map[string]int),
		Items:        make([]string, 0),
	}
	if policy != nil {
		maps.Copy(s.Targets, policy.PurchaseTargets())
	}
	return s
}

// BoardSize is the number of board slots in use, always derived from what is placed.
func (s *Session) BoardSize() int {
	size := len(s.BoardUnknown) - s.CrownSlots
	for _, u := range s.Board {
		size += u.Size
	}
	return size
}

// OnBoard reports whether a unit with name is placed on the board.
func (s *Session) OnBoard(name string) bool {
	return s.boardUnit(name) != nil
}

func (s *Session) boardUnit(name string) *Unit {
	for _, u := range s.Board {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// BoardNames lists the placed units in placement order.
func (s *Session) BoardNames() []string {
	names := make([]string, 0, len(s.Board))
	for _, u := range s.Board {
		names = append(names, u.Name)
	}
	return names
}

func (s *Session) unknownOnBoard(name string) bool {
	for _, p := range s.BoardUnknown {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (s *Session) removeFromBoard(u *Unit) {
	for i, b := range s.Board {
		if b == u {
			s.Board = append(s.Board[:i], s.Board[i+1:]...)
			return
		}
	}
}

// decrementTarget lowers remaining demand for name, never below zero.
// Champions that are not targets are left alone.
func (s *Session) decrementTarget(name string, quantity int) {
	remaining, ok := s.Targets[name]
	if !ok {
		return
	}
	remaining -= quantity
	if remaining < 0 {
		remaining = 0
	}
	s.Targets[name] = remaining
}

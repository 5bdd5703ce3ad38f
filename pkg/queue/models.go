package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase identifies one step of the round lifecycle run by the worker
type Phase string

const (
	PhaseNewRound       Phase = "new_round"
	PhaseFixBench       Phase = "fix_bench"
	PhaseBuy            Phase = "buy"
	PhaseBuySpeedy      Phase = "buy_speedy"
	PhaseBuyXP          Phase = "buy_xp"
	PhaseMove           Phase = "move"
	PhaseReplaceUnknown Phase = "replace_unknown"
	PhaseFixUnknown     Phase = "fix_unknown"
	PhaseFinalComp      Phase = "final_comp"
	PhasePlaceItems     Phase = "place_items"
	PhaseAugment        Phase = "augment"
	PhaseAnvil          Phase = "anvil"
	PhaseBenchCleanup   Phase = "bench_cleanup"
	PhaseCrownCheck     Phase = "crown_check"
	PhaseHealth         Phase = "health"
	PhaseLabels         Phase = "labels"
)

// Phases lists every phase in the order a typical round runs them.
var Phases = []Phase{
	PhaseNewRound,
	PhaseHealth,
	PhaseAugment,
	PhaseFixBench,
	PhaseBuy,
	PhaseBuySpeedy,
	PhaseBuyXP,
	PhaseMove,
	PhaseReplaceUnknown,
	PhaseFixUnknown,
	PhaseFinalComp,
	PhaseCrownCheck,
	PhasePlaceItems,
	PhaseBenchCleanup,
	PhaseAnvil,
	PhaseLabels,
}

// Valid reports whether p is a known phase
func (p Phase) Valid() bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePhase converts a string into a known phase
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}

// PhaseRequest asks the worker to run one phase against a session
type PhaseRequest struct {
	RequestID  string    `json:"request_id"`
	Phase      Phase     `json:"phase"`
	SessionID  uuid.UUID `json:"session_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewPhaseRequest stamps a request with a fresh ID and the current time
func NewPhaseRequest(sessionID uuid.UUID, phase Phase) *PhaseRequest {
	return &PhaseRequest{
		RequestID:  uuid.New().String(),
		Phase:      phase,
		SessionID:  sessionID,
		EnqueuedAt: time.Now(),
	}
}

// MarshalJSON serializes the request to JSON for Redis storage
func (r *PhaseRequest) MarshalJSON() ([]byte, error) {
	type Alias PhaseRequest
	return json.Marshal(&struct {
		SessionID string `json:"session_id"`
		*Alias
	}{
		SessionID: r.SessionID.String(),
		Alias:     (*Alias)(r),
	})
}

// UnmarshalJSON deserializes the request from JSON in Redis
func (r *PhaseRequest) UnmarshalJSON(data []byte) error {
	type Alias PhaseRequest
	aux := &struct {
		SessionID string `json:"session_id"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	sessionID, err := uuid.Parse(aux.SessionID)
	if err != nil {
		return err
	}

	r.SessionID = sessionID
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *PhaseRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*PhaseRequest, error) {
	var req PhaseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

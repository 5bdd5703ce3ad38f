package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Comp  string     `json:"comp,omitempty"`  // Used for regular tests
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep queues one phase and checks the session once it finishes
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Phase        string       `json:"phase"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a phase completes.
// Unset fields are not checked.
type Expectations struct {
	Failed        *bool    `json:"failed,omitempty"` // the phase is expected to fail
	Round         *int     `json:"round,omitempty"`
	Level         *int     `json:"level,omitempty"`
	Health        *int     `json:"health,omitempty"`
	BoardSize     *int     `json:"board_size,omitempty"`
	MaxBoardSize  *int     `json:"max_board_size,omitempty"`
	BoardContains []string `json:"board_contains,omitempty"`
	BoardExcludes []string `json:"board_excludes,omitempty"`
	BenchEmpty    *bool    `json:"bench_empty,omitempty"`

	// Remaining purchase demand per champion
	Targets map[string]int `json:"targets,omitempty"`

	AggressiveRoll    *bool `json:"aggressive_roll,omitempty"`
	HeadlinerAcquired *bool `json:"headliner_acquired,omitempty"`
	AugmentRerollUsed *bool `json:"augment_reroll_used,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Phase    string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID // ID of the session used for this test
}

package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/pkg/arena"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running arena-engine API and worker
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	CompOverride      string // If set, overrides the comp for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite against a fresh session
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	comp := suite.Comp
	if r.CompOverride != "" {
		comp = r.CompOverride
	}
	s, err := CreateSession(ctx, r.Client, r.BaseURL, comp)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = s.ID

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := StreamEvents(streamCtx, r.BaseURL, s.ID)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, stream, s.ID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, stream <-chan *events.Event, id uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	res := TestResult{StepName: step.Name, Phase: step.Phase}
	if res.StepName == "" {
		res.StepName = step.Phase
	}

	fail := func(err error) TestResult {
		res.Error = err
		res.Duration = time.Since(start)
		return res
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	requestID, err := EnqueuePhase(stepCtx, r.Client, r.BaseURL, id, step.Phase)
	if err != nil {
		return fail(err)
	}

	ev, err := WaitForPhase(stepCtx, stream, requestID)
	if err != nil {
		return fail(err)
	}

	failed := ev.Type == events.EventTypePhaseFailed
	wantFailed := step.Expectations.Failed != nil && *step.Expectations.Failed
	if failed != wantFailed {
		if failed {
			return fail(fmt.Errorf("phase %s failed: %v", step.Phase, ev.Data["error"]))
		}
		return fail(fmt.Errorf("phase %s succeeded, expected failure", step.Phase))
	}

	s, err := GetSession(stepCtx, r.Client, r.BaseURL, id)
	if err != nil {
		return fail(err)
	}
	if err := CheckExpectations(s, step.Expectations); err != nil {
		return fail(err)
	}

	res.Success = true
	res.Duration = time.Since(start)
	return res
}

// CheckExpectations compares a session against the expected values and reports every mismatch
func CheckExpectations(s *arena.Session, exp Expectations) error {
	var problems []string
	checkInt := func(name string, want *int, got int) {
		if want != nil && *want != got {
			problems = append(problems, fmt.Sprintf("%s: expected %d, got %d", name, *want, got))
		}
	}
	checkBool := func(name string, want *bool, got bool) {
		if want != nil && *want != got {
			problems = append(problems, fmt.Sprintf("%s: expected %t, got %t", name, *want, got))
		}
	}

	checkInt("round", exp.Round, s.Round)
	checkInt("level", exp.Level, s.Level)
	checkInt("health", exp.Health, s.Health)
	checkInt("board_size", exp.BoardSize, s.BoardSize())
	if exp.MaxBoardSize != nil && s.BoardSize() > *exp.MaxBoardSize {
		problems = append(problems, fmt.Sprintf("board_size: expected at most %d, got %d", *exp.MaxBoardSize, s.BoardSize()))
	}

	board := s.BoardNames()
	for _, name := range exp.BoardContains {
		if !slices.Contains(board, name) {
			problems = append(problems, fmt.Sprintf("board: expected %s in %v", name, board))
		}
	}
	for _, name := range exp.BoardExcludes {
		if slices.Contains(board, name) {
			problems = append(problems, fmt.Sprintf("board: expected no %s in %v", name, board))
		}
	}

	if exp.BenchEmpty != nil {
		empty := true
		for _, slot := range s.Bench {
			if !slot.IsEmpty() {
				empty = false
				break
			}
		}
		checkBool("bench_empty", exp.BenchEmpty, empty)
	}

	for name, want := range exp.Targets {
		if got := s.Targets[name]; got != want {
			problems = append(problems, fmt.Sprintf("targets[%s]: expected %d, got %d", name, want, got))
		}
	}

	checkBool("aggressive_roll", exp.AggressiveRoll, s.Flags.AggressiveRoll)
	checkBool("headliner_acquired", exp.HeadlinerAcquired, s.Flags.HeadlinerAcquired)
	checkBool("augment_reroll_used", exp.AugmentRerollUsed, s.Flags.AugmentRerollUsed)

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

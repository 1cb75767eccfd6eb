// Package report renders the outcome of test runs.
package report

import (
	"time"

	"github.com/hammingai/hammingctl/internal/testrun"
)

// TestResult represents the outcome of a test run as observed by hammingctl.
type TestResult struct {
	RunID     string
	Name      string
	Direction testrun.Direction
	Status    string
	URL       string
	Duration  time.Duration
	// TimedOut is set if hammingctl stopped waiting before the run reached a terminal state.
	TimedOut bool

	// Results are the detailed results, if they have been fetched.
	Results *testrun.Results
}

// Summary returns the call counters of the run, or the zero value if no results have been fetched.
func (t TestResult) Summary() testrun.Summary {
	if t.Results == nil {
		return testrun.Summary{}
	}
	return t.Results.Summary()
}

// Passed returns true if the run completed and none of its calls failed.
func (t TestResult) Passed() bool {
	return !t.TimedOut && testrun.NormalizeStatus(t.Status) == testrun.StatusCompleted && t.Summary().Failed == 0
}

// Reporter is the interface for test result reporting.
type Reporter interface {
	// Add adds the TestResult to the reporter. TestResults added this way can then be rendered out by calling Render().
	Add(t TestResult)
	// Render renders the test results. The destination depends on the implementation.
	Render()
	// Reset resets the state of the reporter (e.g. remove any previously reported TestResults).
	Reset()
}

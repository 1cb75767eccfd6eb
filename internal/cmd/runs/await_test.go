package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/mocks"
	"github.com/hammingai/hammingctl/internal/poll"
	"github.com/hammingai/hammingctl/internal/report"
	"github.com/hammingai/hammingctl/internal/report/table"
	"github.com/hammingai/hammingctl/internal/testrun"
)

type fakeNotifier struct {
	results []report.TestResult
	sent    []bool
}

func (f *fakeNotifier) Add(t report.TestResult) { f.results = append(f.results, t) }
func (f *fakeNotifier) Render()                 {}
func (f *fakeNotifier) Reset()                  { f.results = nil }
func (f *fakeNotifier) SendMessage(_ context.Context, passed bool) {
	f.sent = append(f.sent, passed)
}

func mustResults(t *testing.T, payload string) testrun.Results {
	t.Helper()
	var r testrun.Results
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatal(err)
	}
	return r
}

func pollResult(status string, outcome poll.Outcome) poll.Result[testrun.TestRun] {
	return poll.Result[testrun.TestRun]{
		Value:    testrun.TestRun{ID: "r-1", Status: status},
		Outcome:  outcome,
		Attempts: 4,
		Elapsed:  15 * time.Second,
	}
}

func TestAwait(t *testing.T) {
	passing := `{"run_id":"r-1","calls":[{"status":"completed","duration":10},{"status":"completed","duration":20}]}`
	failing := `{"run_id":"r-1","calls":[{"status":"completed","duration":10},{"status":"failed","duration":20}]}`

	tests := []struct {
		name        string
		pollResult  poll.Result[testrun.TestRun]
		pollErr     error
		results     string
		wantErr     error
		wantFile    bool
		wantTimeout bool
		wantSent    []bool
	}{
		{
			name:       "passed",
			pollResult: pollResult("completed", poll.OutcomeDone),
			results:    passing,
			wantFile:   true,
			wantSent:   []bool{true},
		},
		{
			name:       "failed calls",
			pollResult: pollResult("completed", poll.OutcomeDone),
			results:    failing,
			wantErr:    cmds.ErrTestRunFailed,
			wantFile:   true,
			wantSent:   []bool{false},
		},
		{
			name:       "failed run",
			pollResult: pollResult("failed", poll.OutcomeDone),
			results:    `{"calls":[]}`,
			wantErr:    cmds.ErrTestRunFailed,
			wantFile:   true,
			wantSent:   []bool{false},
		},
		{
			name:        "timeout fails",
			pollResult:  pollResult("in_progress", poll.OutcomeTimedOut),
			pollErr:     &poll.TimeoutError{Timeout: time.Minute, Attempts: 4},
			wantErr:     poll.ErrTimeout,
			wantTimeout: true,
			wantSent:    []bool{false},
		},
		{
			name:        "timeout advisory",
			pollResult:  pollResult("in_progress", poll.OutcomeTimedOut),
			wantTimeout: true,
			wantSent:    []bool{true},
		},
		{
			name:       "aborted",
			pollResult: pollResult("in_progress", poll.OutcomeAborted),
			pollErr:    poll.ErrAborted,
			wantErr:    poll.ErrAborted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readResults := 0
			svc := &mocks.FakeTestRunService{
				DashboardURLBase: "https://app.hamming.ai",
				PollTestRunFn: func(ctx context.Context, id string, opts poll.Options) (poll.Result[testrun.TestRun], error) {
					assert.Equal(t, "r-1", id)
					assert.Equal(t, poll.TimeoutAdvisory, opts.OnTimeout)
					return tt.pollResult, tt.pollErr
				},
				ReadResultsFn: func(ctx context.Context, id string) (testrun.Results, error) {
					readResults++
					return mustResults(t, tt.results), nil
				},
			}

			file := filepath.Join(t.TempDir(), "results.json")
			var buf bytes.Buffer
			reporter := &table.Reporter{Dst: &buf}
			notifier := &fakeNotifier{}

			err := Await(context.Background(), svc, "r-1", AwaitOptions{
				Direction:   testrun.Outbound,
				Name:        "Smoke",
				Poll:        poll.Options{OnTimeout: poll.TimeoutAdvisory},
				ResultsFile: file,
				Reporters:   []report.Reporter{reporter},
				Notifier:    notifier,
			})

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			}

			_, statErr := os.Stat(file)
			assert.Equal(t, tt.wantFile, statErr == nil)
			if tt.wantFile {
				assert.Equal(t, 1, readResults)
				var got, want interface{}
				b, _ := os.ReadFile(file)
				assert.NoError(t, json.Unmarshal(b, &got))
				assert.NoError(t, json.Unmarshal([]byte(tt.results), &want))
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("results file mismatch (-want +got):\n%s", diff)
				}
			} else {
				assert.Equal(t, 0, readResults)
			}

			assert.Equal(t, tt.wantSent, notifier.sent)
			if len(notifier.results) > 0 {
				tr := notifier.results[0]
				assert.Equal(t, tt.wantTimeout, tr.TimedOut)
				assert.Equal(t, "https://app.hamming.ai/test-runs/r-1", tr.URL)
				assert.Equal(t, "Smoke", tr.Name)
				assert.Equal(t, 15*time.Second, tr.Duration)
			}

			if tt.wantSent != nil {
				assert.Contains(t, buf.String(), "Run ID:    r-1")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestAwait_ReadResultsError(t *testing.T) {
	svc := &mocks.FakeTestRunService{
		PollTestRunFn: func(ctx context.Context, id string, opts poll.Options) (poll.Result[testrun.TestRun], error) {
			return pollResult("completed", poll.OutcomeDone), nil
		},
		ReadResultsFn: func(ctx context.Context, id string) (testrun.Results, error) {
			return testrun.Results{}, errors.New("connection reset")
		},
	}

	err := Await(context.Background(), svc, "r-1", AwaitOptions{
		Direction:   testrun.Inbound,
		ResultsFile: filepath.Join(t.TempDir(), "results.json"),
	})
	assert.ErrorContains(t, err, "failed to read results of test run r-1")
}

func TestAwait_WriteResultsError(t *testing.T) {
	svc := &mocks.FakeTestRunService{
		PollTestRunFn: func(ctx context.Context, id string, opts poll.Options) (poll.Result[testrun.TestRun], error) {
			return pollResult("completed", poll.OutcomeDone), nil
		},
		ReadResultsFn: func(ctx context.Context, id string) (testrun.Results, error) {
			var r testrun.Results
			err := json.Unmarshal([]byte(`{"calls":[{"status":"completed"}]}`), &r)
			return r, err
		},
	}

	err := Await(context.Background(), svc, "r-1", AwaitOptions{
		Direction:   testrun.Outbound,
		ResultsFile: filepath.Join(t.TempDir(), "missing", "results.json"),
	})
	assert.ErrorContains(t, err, "failed to write test results")
}

func TestResultsFilename(t *testing.T) {
	assert.Equal(t, "outbound_test_results_r-1.json", ResultsFilename(testrun.Outbound, "r-1"))
	assert.Equal(t, "inbound_test_results_abc.json", ResultsFilename(testrun.Inbound, "abc"))
}

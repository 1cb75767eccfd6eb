package runs

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/notification"
	"github.com/hammingai/hammingctl/internal/poll"
	"github.com/hammingai/hammingctl/internal/progress"
	"github.com/hammingai/hammingctl/internal/report"
	"github.com/hammingai/hammingctl/internal/report/json"
	"github.com/hammingai/hammingctl/internal/testrun"
)

// AwaitOptions control what happens while and after waiting on a test run.
type AwaitOptions struct {
	Direction testrun.Direction
	Name      string
	Poll      poll.Options

	// ResultsFile receives the detailed results. Defaults to ResultsFilename.
	ResultsFile string

	Reporters []report.Reporter
	Notifier  notification.Reporter
}

// ResultsFilename returns the default name of the file the results of run id are saved to.
func ResultsFilename(dir testrun.Direction, id string) string {
	return fmt.Sprintf("%s_test_results_%s.json", dir, id)
}

// Await waits for the test run to finish, fetches its results and hands them to the reporters. It returns
// cmds.ErrTestRunFailed if the run did not pass, and nil if the deadline passed under poll.TimeoutAdvisory.
func Await(ctx context.Context, svc testrun.Service, id string, opts AwaitOptions) error {
	progress.Show("Waiting for test run %s to finish", id)
	res, err := svc.PollTestRun(ctx, id, opts.Poll)
	progress.Stop()

	tr := report.TestResult{
		RunID:     id,
		Name:      opts.Name,
		Direction: opts.Direction,
		Status:    res.Value.Status,
		URL:       svc.DashboardURL(id),
		Duration:  res.Elapsed,
	}
	if tr.Name == "" {
		res.Value.Field("name", &tr.Name)
	}

	switch {
	case errors.Is(err, poll.ErrAborted):
		return fmt.Errorf("stopped waiting for test run %s: %w", id, err)
	case errors.Is(err, poll.ErrTimeout):
		tr.TimedOut = true
		publish(ctx, tr, opts, false)
		return fmt.Errorf("test run %s did not finish in time: %w", id, err)
	case err != nil:
		return fmt.Errorf("failed to wait for test run %s: %w", id, err)
	}

	if res.Outcome == poll.OutcomeTimedOut {
		tr.TimedOut = true
		publish(ctx, tr, opts, true)
		msg.LogTimeoutAdvisory(id)
		return nil
	}

	log.Info().Str("runID", id).Str("status", tr.Status).Int("queries", res.Attempts).Msg("Test run finished.")

	results, err := svc.ReadResults(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read results of test run %s: %w", id, err)
	}
	tr.Results = &results

	resultsFile := opts.ResultsFile
	if resultsFile == "" {
		resultsFile = ResultsFilename(opts.Direction, id)
	}
	fileReporter := &json.Reporter{Filename: resultsFile}
	fileReporter.Add(tr)
	writeErr := fileReporter.WriteFile()

	passed := tr.Passed()
	publish(ctx, tr, opts, passed)
	if writeErr != nil {
		return writeErr
	}

	if passed {
		msg.LogTestSuccess()
		return nil
	}

	s := tr.Summary()
	msg.LogTestFailure(s.Failed, s.Completed)
	return cmds.ErrTestRunFailed
}

func publish(ctx context.Context, tr report.TestResult, opts AwaitOptions, passed bool) {
	for _, r := range opts.Reporters {
		r.Add(tr)
		r.Render()
	}
	if opts.Notifier != nil {
		opts.Notifier.Add(tr)
		opts.Notifier.SendMessage(ctx, passed)
	}
}

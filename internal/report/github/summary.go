package github

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hammingai/hammingctl/internal/report"
)

// Reporter appends a markdown summary of test runs to the GitHub Actions job summary.
type Reporter struct {
	stepSummaryFile string
	results         []report.TestResult
}

// NewGithubSummary returns a reporter that is active if GITHUB_STEP_SUMMARY is set.
func NewGithubSummary() *Reporter {
	return &Reporter{
		stepSummaryFile: os.Getenv("GITHUB_STEP_SUMMARY"),
	}
}

func (r *Reporter) isActive() bool {
	return r.stepSummaryFile != ""
}

func (r *Reporter) Add(t report.TestResult) {
	if !r.isActive() {
		return
	}
	r.results = append(r.results, t)
}

func (r *Reporter) Render() {
	if !r.isActive() || len(r.results) == 0 {
		return
	}
	fd, err := os.OpenFile(r.stepSummaryFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open GitHub step summary.")
		return
	}
	defer fd.Close()

	renderHeader(fd)
	for _, result := range r.results {
		renderTestResult(fd, result)
	}
	if err := fd.Sync(); err != nil {
		log.Error().Err(err).Msg("Failed to write GitHub step summary.")
	}
}

func (r *Reporter) Reset() {
	r.results = nil
}

func renderHeader(w io.Writer) {
	_, _ = fmt.Fprint(w, "| | Name | Direction | Status | Calls | Failed | Duration |\n")
	_, _ = fmt.Fprint(w, "| --- | --- | --- | --- | --- | --- | --- |\n")
}

func renderTestResult(w io.Writer, t report.TestResult) {
	mark := ":x:"
	if t.Passed() {
		mark = ":white_check_mark:"
	} else if t.TimedOut {
		mark = ":hourglass:"
	}

	name := t.Name
	if name == "" {
		name = t.RunID
	}
	if t.URL != "" {
		name = fmt.Sprintf("[%s](%s)", name, t.URL)
	}

	calls, failed := "-", "-"
	if t.Results != nil {
		s := t.Summary()
		calls = fmt.Sprint(s.Total)
		failed = fmt.Sprint(s.Failed)
	}

	_, _ = fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
		mark, name, t.Direction, t.Status, calls, failed, t.Duration.Round(time.Second))
}

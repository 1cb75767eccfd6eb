package json

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hammingai/hammingctl/internal/jsonio"
	"github.com/hammingai/hammingctl/internal/report"
	"github.com/hammingai/hammingctl/internal/testrun"
)

// Reporter writes the detailed results of test runs to a JSON file. A single run is written as the results object
// returned by the service, several runs as an array of such objects.
type Reporter struct {
	Filename string
	Results  []report.TestResult
	lock     sync.Mutex
}

// Add adds a TestResult
func (r *Reporter) Add(t report.TestResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Results = append(r.Results, t)
}

// Render writes the results to Filename. Runs without fetched results are skipped.
func (r *Reporter) Render() {
	if err := r.WriteFile(); err != nil {
		log.Error().Err(err).Msg("Failed to save test results.")
	}
}

// WriteFile is like Render but returns the error of writing Filename.
func (r *Reporter) WriteFile() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.Filename == "" {
		return nil
	}

	var all []testrun.Results
	for _, t := range r.Results {
		if t.Results != nil {
			all = append(all, *t.Results)
		}
	}
	if len(all) == 0 {
		log.Debug().Str("file", r.Filename).Msg("No results to write.")
		return nil
	}

	var v interface{} = all
	if len(all) == 1 {
		v = all[0]
	}

	if err := jsonio.WriteFile(r.Filename, v); err != nil {
		return fmt.Errorf("failed to write test results to %s: %w", r.Filename, err)
	}
	log.Info().Str("file", r.Filename).Msg("Test results saved.")
	return nil
}

// Reset resets the reporter to its initial state. This action will delete all test results.
func (r *Reporter) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Results = make([]report.TestResult, 0)
}

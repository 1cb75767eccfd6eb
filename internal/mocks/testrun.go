package mocks

import (
	"context"

	"github.com/hammingai/hammingctl/internal/poll"
	"github.com/hammingai/hammingctl/internal/testrun"
)

// FakeTestRunService test run service mock
type FakeTestRunService struct {
	CreateTestRunFn  func(ctx context.Context, dir testrun.Direction, opts testrun.CreateOptions) (testrun.TestRun, error)
	ReadStatusFn     func(ctx context.Context, id string) (testrun.TestRun, error)
	ReadResultsFn    func(ctx context.Context, id string) (testrun.Results, error)
	ListTestRunsFn   func(ctx context.Context, dir testrun.Direction, limit int) ([]testrun.TestRun, error)
	PollTestRunFn    func(ctx context.Context, id string, opts poll.Options) (poll.Result[testrun.TestRun], error)
	DashboardURLBase string
}

// CreateTestRun mock function
func (s *FakeTestRunService) CreateTestRun(ctx context.Context, dir testrun.Direction, opts testrun.CreateOptions) (testrun.TestRun, error) {
	return s.CreateTestRunFn(ctx, dir, opts)
}

// ReadStatus mock function
func (s *FakeTestRunService) ReadStatus(ctx context.Context, id string) (testrun.TestRun, error) {
	return s.ReadStatusFn(ctx, id)
}

// ReadResults mock function
func (s *FakeTestRunService) ReadResults(ctx context.Context, id string) (testrun.Results, error) {
	return s.ReadResultsFn(ctx, id)
}

// ListTestRuns mock function
func (s *FakeTestRunService) ListTestRuns(ctx context.Context, dir testrun.Direction, limit int) ([]testrun.TestRun, error) {
	return s.ListTestRunsFn(ctx, dir, limit)
}

// PollTestRun mock function
func (s *FakeTestRunService) PollTestRun(ctx context.Context, id string, opts poll.Options) (poll.Result[testrun.TestRun], error) {
	return s.PollTestRunFn(ctx, id, opts)
}

// DashboardURL mock function
func (s *FakeTestRunService) DashboardURL(id string) string {
	return s.DashboardURLBase + "/test-runs/" + id
}

package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/jsonio"
	"github.com/hammingai/hammingctl/internal/mocks"
	"github.com/hammingai/hammingctl/internal/testrun"
)

func decodeRun(t *testing.T, payload string) testrun.TestRun {
	t.Helper()
	var r testrun.TestRun
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestStatus(t *testing.T) {
	run := decodeRun(t, `{"id":"r-1","status":"in_progress","calls_completed":1,"calls_expected":3,`+
		`"phone_numbers":[{"number":"+15550100","region":"us","provider":"twilio"}]}`)
	svc := &mocks.FakeTestRunService{
		DashboardURLBase: "https://app.hamming.ai",
		ReadStatusFn: func(ctx context.Context, id string) (testrun.TestRun, error) {
			return run, nil
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		assert.NoError(t, status(context.Background(), &buf, svc, "r-1", cmds.TextOutput))

		out := buf.String()
		for _, want := range []string{"r-1", "in_progress", "1/3 calls completed", "https://app.hamming.ai/test-runs/r-1",
			"+15550100", "twilio", "1 phone numbers assigned"} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		assert.NoError(t, status(context.Background(), &buf, svc, "r-1", cmds.JSONOutput))

		var got map[string]interface{}
		assert.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "r-1", got["id"])
		assert.Equal(t, float64(3), got["calls_expected"])
	})
}

func TestStatus_Error(t *testing.T) {
	svc := &mocks.FakeTestRunService{
		ReadStatusFn: func(ctx context.Context, id string) (testrun.TestRun, error) {
			return testrun.TestRun{}, errors.New("boom")
		},
	}
	err := status(context.Background(), &bytes.Buffer{}, svc, "r-1", cmds.TextOutput)
	assert.ErrorContains(t, err, "failed to get test run status")
}

func TestResults(t *testing.T) {
	color.NoColor = true

	payload := `{"status":"completed","calls":[{"phone_number":"+15550100","status":"completed","duration":30}]}`
	svc := &mocks.FakeTestRunService{
		DashboardURLBase: "https://app.hamming.ai",
		ReadResultsFn: func(ctx context.Context, id string) (testrun.Results, error) {
			var r testrun.Results
			err := json.Unmarshal([]byte(payload), &r)
			return r, err
		},
	}

	file := filepath.Join(t.TempDir(), "results.json")
	var buf bytes.Buffer
	assert.NoError(t, results(context.Background(), &buf, svc, "r-1", cmds.TextOutput, file))

	out := buf.String()
	assert.Contains(t, out, "Run ID:    r-1")
	assert.Contains(t, out, "+15550100")
	assert.Contains(t, out, "All 1 calls have passed")

	var saved map[string]interface{}
	assert.NoError(t, jsonio.ReadFile(file, &saved))
	assert.Equal(t, "completed", saved["status"])
}

func TestList(t *testing.T) {
	tests := []struct {
		name   string
		runs   string
		format string
		want   []string
	}{
		{
			name:   "table",
			runs:   `[{"id":"r-1","name":"Smoke","status":"completed","createdAt":"2026-10-01T10:00:00Z"},{"id":"r-2","status":"running"}]`,
			format: cmds.TextOutput,
			want:   []string{"r-1", "Smoke", "2026-10-01T10:00:00Z", "r-2", "running", "2 test runs in total"},
		},
		{
			name:   "empty table",
			runs:   `[]`,
			format: cmds.TextOutput,
			want:   []string{"Cannot find any test runs"},
		},
		{
			name:   "empty json",
			runs:   `[]`,
			format: cmds.JSONOutput,
			want:   []string{"[]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.FakeTestRunService{
				ListTestRunsFn: func(ctx context.Context, dir testrun.Direction, limit int) ([]testrun.TestRun, error) {
					assert.Equal(t, testrun.Inbound, dir)
					assert.Equal(t, 5, limit)
					var runs []testrun.TestRun
					err := json.Unmarshal([]byte(tt.runs), &runs)
					return runs, err
				},
			}

			var buf bytes.Buffer
			assert.NoError(t, list(context.Background(), &buf, svc, testrun.Inbound, 5, tt.format))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	dir, err := parseDirection("inbound")
	assert.NoError(t, err)
	assert.Equal(t, testrun.Inbound, dir)

	_, err = parseDirection("sideways")
	assert.ErrorContains(t, err, "invalid direction 'sideways'")
}

func TestRequireID(t *testing.T) {
	assert.Error(t, requireID(nil, nil))
	assert.Error(t, requireID(nil, []string{" "}))
	assert.NoError(t, requireID(nil, []string{"r-1"}))
}

func TestWaitFlags_Notifier(t *testing.T) {
	t.Setenv(SlackTokenEnv, "xoxb-test")

	wf := WaitFlags{}
	n, err := wf.Notifier()
	assert.NoError(t, err)
	assert.Nil(t, n)

	wf = WaitFlags{SlackChannels: []string{"qa"}, SlackSend: "always"}
	n, err = wf.Notifier()
	assert.NoError(t, err)
	assert.NotNil(t, n)

	wf = WaitFlags{SlackChannels: []string{"qa"}, SlackSend: "sometimes"}
	_, err = wf.Notifier()
	assert.Error(t, err)
}

package testrun

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hammingai/hammingctl/internal/poll"
)

// Direction selects which family of endpoints a test run belongs to.
type Direction string

const (
	// Outbound runs have the testing service call the agent under test.
	Outbound Direction = "outbound"
	// Inbound runs hand out phone numbers that the agent under test must call.
	Inbound Direction = "inbound"
)

// Directions lists every supported Direction.
var Directions = []Direction{Outbound, Inbound}

// Valid returns true if d is a known direction.
func (d Direction) Valid() bool {
	return d == Outbound || d == Inbound
}

func (d Direction) String() string {
	return string(d)
}

// The different states that a test run can be in.
const (
	StatusPending    = "pending"
	StatusQueued     = "queued"
	StatusInProgress = "in_progress"
	StatusRunning    = "running"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusUnknown    = "unknown"
)

// AllStates lists the statuses the service is known to report.
var AllStates = []string{StatusPending, StatusQueued, StatusInProgress, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled}

// DoneStates represents states that a test run doesn't transition out of, i.e. once the run is in one of these
// states, it's done.
var DoneStates = []string{StatusCompleted, StatusFailed, StatusCancelled}

// NormalizeStatus folds the spellings used by the different endpoints ("COMPLETED", "in-progress", "canceled")
// into the lower snake case constants above.
func NormalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	if s == "canceled" {
		return StatusCancelled
	}
	return s
}

// Done returns true if the status is one of DoneStates. Unrecognized statuses are not done.
func Done(status string) bool {
	s := NormalizeStatus(status)
	for _, d := range DoneStates {
		if d == s {
			return true
		}
	}

	return false
}

// idKeys are the names under which the service reports a test run id, in lookup order.
var idKeys = []string{"run_id", "testRunId", "id"}

// TestRun is the client side view of a remote test run. Only the id and status are interpreted; all other fields
// are kept verbatim in Extra so that they survive a round trip.
type TestRun struct {
	ID     string
	Status string

	// Extra contains every other field of the payload.
	Extra map[string]json.RawMessage

	idKey     string
	statusKey string
}

// Done returns true if the run reached a terminal state.
func (r TestRun) Done() bool {
	return Done(r.Status)
}

// Field decodes the pass-through field key into v. Returns false if the field is absent or cannot be decoded.
func (r TestRun) Field(key string, v interface{}) bool {
	return field(r.Extra, key, v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *TestRun) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	*r = TestRun{}
	r.idKey = take(m, &r.ID, idKeys...)
	r.statusKey = take(m, &r.Status, "status")
	r.Extra = m

	return nil
}

// MarshalJSON implements json.Marshaler. The id and status are written back under the keys they were read from.
func (r TestRun) MarshalJSON() ([]byte, error) {
	m := clone(r.Extra)
	if err := put(m, orDefault(r.idKey, idKeys[0]), r.ID, r.idKey != ""); err != nil {
		return nil, err
	}
	if err := put(m, "status", r.Status, r.statusKey != ""); err != nil {
		return nil, err
	}

	return json.Marshal(m)
}

// Assignment is a phone number handed out by the service for a test run.
type Assignment struct {
	PhoneNumber   string
	TestCase      string
	TestCaseRunID string
	Region        string
	Provider      string
}

// Assignments returns the phone numbers attached to the run, if any. Outbound runs report them as
// "assignedNumbers", inbound runs as "phone_numbers".
func (r TestRun) Assignments() []Assignment {
	var assigned []struct {
		PhoneNumber   string `json:"phoneNumber"`
		TestCaseTitle string `json:"testCaseTitle"`
		TestCaseRunID string `json:"testCaseRunId"`
	}
	if r.Field("assignedNumbers", &assigned) {
		out := make([]Assignment, 0, len(assigned))
		for _, a := range assigned {
			out = append(out, Assignment{PhoneNumber: a.PhoneNumber, TestCase: a.TestCaseTitle, TestCaseRunID: a.TestCaseRunID})
		}
		return out
	}

	var numbers []struct {
		Number   string `json:"number"`
		Region   string `json:"region"`
		Provider string `json:"provider"`
	}
	if r.Field("phone_numbers", &numbers) {
		out := make([]Assignment, 0, len(numbers))
		for _, n := range numbers {
			out = append(out, Assignment{PhoneNumber: n.Number, Region: n.Region, Provider: n.Provider})
		}
		return out
	}

	return nil
}

// Progress returns the number of completed and expected calls if the status payload carries them.
func (r TestRun) Progress() (completed, expected int, ok bool) {
	if !r.Field("calls_completed", &completed) {
		return 0, 0, false
	}
	r.Field("calls_expected", &expected)
	return completed, expected, true
}

// CreateOptions describes the test run to create.
type CreateOptions struct {
	AgentID        string
	Name           string
	Description    string
	TagIDs         []string
	TimeoutMinutes int
	PhoneNumbers   []string

	// Config is merged into the request payload as is. Typed fields above take precedence.
	Config map[string]interface{}
}

// SetDefaults applies the defaults used by the service dashboard.
func (o *CreateOptions) SetDefaults() {
	if o.Name == "" {
		o.Name = "API Test Run"
	}
	if o.TimeoutMinutes == 0 {
		o.TimeoutMinutes = 10
	}
	if len(o.TagIDs) == 0 && o.AgentID != "" {
		o.TagIDs = []string{"default"}
	}
}

// Payload returns the request body for the create call.
func (o CreateOptions) Payload() map[string]interface{} {
	p := make(map[string]interface{}, len(o.Config)+6)
	for k, v := range o.Config {
		p[k] = v
	}

	if o.AgentID != "" {
		p["agentId"] = o.AgentID
	}
	if o.Name != "" {
		p["name"] = o.Name
	}
	if o.Description != "" {
		p["description"] = o.Description
	}
	if len(o.TagIDs) > 0 {
		p["tagIds"] = o.TagIDs
	}
	if o.TimeoutMinutes > 0 {
		p["timeoutMinutes"] = o.TimeoutMinutes
	}
	if len(o.PhoneNumbers) > 0 {
		p["phone_numbers"] = o.PhoneNumbers
	}

	return p
}

// Starter represents the interface for creating test runs.
type Starter interface {
	CreateTestRun(ctx context.Context, dir Direction, opts CreateOptions) (TestRun, error)
}

// Reader represents the interface for reading test runs.
type Reader interface {
	// ReadStatus returns the current status of a test run.
	ReadStatus(ctx context.Context, id string) (TestRun, error)

	// ReadResults returns the detailed results of a test run.
	ReadResults(ctx context.Context, id string) (Results, error)

	// ListTestRuns returns the most recent test runs of the given direction.
	ListTestRuns(ctx context.Context, dir Direction, limit int) ([]TestRun, error)
}

// Poller represents the interface for awaiting the completion of test runs.
type Poller interface {
	PollTestRun(ctx context.Context, id string, opts poll.Options) (poll.Result[TestRun], error)
}

// Service represents the interface for test run interactions.
type Service interface {
	Starter
	Reader
	Poller

	// DashboardURL returns the link to the run in the web application.
	DashboardURL(id string) string
}

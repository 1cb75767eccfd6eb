package testrun

import (
	"encoding/json"
	"time"
)

// callsKeys are the names under which the results endpoints report the per-call records, in lookup order.
var callsKeys = []string{"calls", "results"}

// Results is a read-only snapshot of the detailed results of a test run.
type Results struct {
	Calls []Call

	// Extra contains every other field of the payload.
	Extra map[string]json.RawMessage

	callsKey string
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Results) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	*r = Results{}
	r.callsKey = take(m, &r.Calls, callsKeys...)
	r.Extra = m

	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Results) MarshalJSON() ([]byte, error) {
	m := clone(r.Extra)
	key := orDefault(r.callsKey, callsKeys[0])
	if r.callsKey != "" || r.Calls != nil {
		calls := r.Calls
		if calls == nil {
			calls = []Call{}
		}
		if err := put(m, key, calls, true); err != nil {
			return nil, err
		}
	}

	return json.Marshal(m)
}

// Field decodes the pass-through field key into v. Returns false if the field is absent or cannot be decoded.
func (r Results) Field(key string, v interface{}) bool {
	return field(r.Extra, key, v)
}

// Summary aggregates the call counters of a test run.
type Summary struct {
	Total     int
	Completed int
	Succeeded int
	Failed    int
	Pending   int

	// AverageDuration is zero if unknown.
	AverageDuration time.Duration
}

// SuccessRate returns the share of completed calls that did not fail, in percent.
func (s Summary) SuccessRate() (float64, bool) {
	if s.Completed == 0 {
		return 0, false
	}
	return float64(s.Completed-s.Failed) / float64(s.Completed) * 100, true
}

type counters struct {
	Total     *int `json:"total"`
	Completed *int `json:"completed"`
	Succeeded *int `json:"succeeded"`
	Failed    *int `json:"failed"`
	Pending   *int `json:"pending"`
}

// Summary returns the aggregate counters. The service reports them either as a "summary" object (optionally nested
// under "stats"), as top level "*_calls" counters, or not at all, in which case they are derived from the calls.
func (r Results) Summary() Summary {
	var s Summary

	var nested struct {
		counters
		Stats *counters `json:"stats"`
	}
	var flat struct {
		Total      *int     `json:"total_calls"`
		Successful *int     `json:"successful_calls"`
		Failed     *int     `json:"failed_calls"`
		AvgSeconds *float64 `json:"average_duration"`
	}

	switch {
	case r.Field("summary", &nested):
		c := nested.counters
		if nested.Stats != nil {
			c = *nested.Stats
		}
		s.Total = deref(c.Total)
		s.Completed = deref(c.Completed)
		s.Failed = deref(c.Failed)
		s.Pending = deref(c.Pending)
		s.Succeeded = s.Completed - s.Failed
		if c.Succeeded != nil {
			s.Succeeded = *c.Succeeded
		}
	case r.Field("total_calls", new(int)):
		_ = json.Unmarshal(encode(r.Extra), &flat)
		s.Total = deref(flat.Total)
		s.Succeeded = deref(flat.Successful)
		s.Failed = deref(flat.Failed)
		s.Completed = s.Succeeded + s.Failed
		s.Pending = s.Total - s.Completed
		if s.Pending < 0 {
			s.Pending = 0
		}
		if flat.AvgSeconds != nil {
			s.AverageDuration = seconds(*flat.AvgSeconds)
		}
	default:
		s = r.deriveSummary()
	}

	if s.AverageDuration == 0 {
		s.AverageDuration = r.deriveSummary().AverageDuration
	}

	return s
}

func (r Results) deriveSummary() Summary {
	s := Summary{Total: len(r.Calls)}
	var total float64
	var timed int
	for _, c := range r.Calls {
		switch NormalizeStatus(c.Status) {
		case StatusCompleted:
			s.Completed++
			s.Succeeded++
		case StatusFailed, StatusCancelled:
			s.Completed++
			s.Failed++
		default:
			s.Pending++
		}
		if c.Duration > 0 {
			total += c.Duration
			timed++
		}
	}
	if timed > 0 {
		s.AverageDuration = seconds(total / float64(timed))
	}
	return s
}

// Call is the record of a single call of a test run.
type Call struct {
	Status string
	// Duration in seconds.
	Duration float64

	// Extra contains every other field of the record (transcript, analysis, recording links, ...).
	Extra map[string]json.RawMessage

	statusKey   string
	durationKey string
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Call) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	*c = Call{}
	c.statusKey = take(m, &c.Status, "status")
	c.durationKey = take(m, &c.Duration, "duration", "durationSeconds")
	c.Extra = m

	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Call) MarshalJSON() ([]byte, error) {
	m := clone(c.Extra)
	if err := put(m, "status", c.Status, c.statusKey != ""); err != nil {
		return nil, err
	}
	if err := put(m, orDefault(c.durationKey, "duration"), c.Duration, c.durationKey != ""); err != nil {
		return nil, err
	}

	return json.Marshal(m)
}

// Field decodes the pass-through field key into v. Returns false if the field is absent or cannot be decoded.
func (c Call) Field(key string, v interface{}) bool {
	return field(c.Extra, key, v)
}

// Text returns the pass-through string field key, or an empty string.
func (c Call) Text(key string) string {
	var s string
	c.Field(key, &s)
	return s
}

// Transcript returns the inline transcript of the call, if any.
func (c Call) Transcript() string {
	return c.Text("transcript")
}

// Analysis is the service's evaluation of a call.
type Analysis struct {
	OverallScore interface{} `json:"overall_score"`
	Sentiment    string      `json:"sentiment"`
	KeyPoints    []string    `json:"key_points"`
}

// Analysis returns the evaluation of the call, if any.
func (c Call) Analysis() (Analysis, bool) {
	var a Analysis
	ok := c.Field("analysis", &a)
	return a, ok
}

func deref(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func encode(m map[string]json.RawMessage) []byte {
	b, _ := json.Marshal(m)
	return b
}

package table

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hammingai/hammingctl/internal/report"
	"github.com/hammingai/hammingctl/internal/testrun"
)

// DefaultStyle is the look of every table printed by hammingctl.
var DefaultStyle = table.Style{
	Name: "hamming",
	Box: table.BoxStyle{
		BottomLeft:       "└",
		BottomRight:      "┘",
		EmptySeparator:   text.RepeatAndTrim(" ", text.RuneCount("+")),
		Left:             "│",
		MiddleHorizontal: "─",
		PaddingLeft:      "  ",
		PaddingRight:     "  ",
		PageSeparator:    "\n",
		Right:            "│",
		TopLeft:          "┌",
		TopRight:         "┐",
		UnfinishedRow:    " ...",
	},
	Color: table.ColorOptionsDefault,
	Format: table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	},
	HTML: table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  true,
		SeparateHeader:  true,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

// phoneKeys are the names under which a call record may carry its phone number, in lookup order.
var phoneKeys = []string{"phone_number", "phoneNumber", "caller_number", "to", "from"}

// Reporter is a table writer implementation for report.Reporter. Every test run is rendered as a table of its calls.
type Reporter struct {
	TestResults []report.TestResult
	Dst         io.Writer
	lock        sync.Mutex
}

// Add adds the test result to the summary table.
func (r *Reporter) Add(t report.TestResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.TestResults = append(r.TestResults, t)
}

// Render renders out a summary table per test run to the destination of Reporter.Dst.
func (r *Reporter) Render() {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, tr := range r.TestResults {
		r.renderRun(tr)
	}
}

func (r *Reporter) renderRun(tr report.TestResult) {
	status := tr.Status
	if tr.TimedOut {
		status = "timed out (" + status + ")"
	}
	_, _ = fmt.Fprintf(r.Dst, "\n%s %s  %s\n", statusSymbol(tr.Status), orDash(tr.Name), statusText(tr.Status, status))
	_, _ = fmt.Fprintf(r.Dst, "  Run ID:    %s\n", tr.RunID)
	if tr.URL != "" {
		_, _ = fmt.Fprintf(r.Dst, "  Dashboard: %s\n", tr.URL)
	}
	if tr.Duration > 0 {
		_, _ = fmt.Fprintf(r.Dst, "  Waited:    %s\n", tr.Duration.Truncate(time.Second))
	}

	if tr.Results == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Dst)
	t.SetStyle(DefaultStyle)
	t.SuppressEmptyColumns()

	t.AppendHeader(table.Row{"", "#", "Phone Number", "Duration", "Status", "Score"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{
			Number:   1, // the nameless column that contains the passed/fail icon
			WidthMax: 1,
		},
		{
			Name:        "Duration",
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
		},
	})

	for i, c := range tr.Results.Calls {
		// the order of values must match the order of the header
		t.AppendRow(table.Row{statusSymbol(c.Status), i + 1, phoneNumber(c), duration(c.Duration),
			statusText(c.Status, c.Status), score(c)})
	}

	t.AppendFooter(footer(tr.Summary()))

	_, _ = fmt.Fprintln(r.Dst)
	t.Render()
}

// Reset resets the reporter to its initial state. This action will delete all test results.
func (r *Reporter) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.TestResults = make([]report.TestResult, 0)
}

func footer(s testrun.Summary) table.Row {
	avg := ""
	if s.AverageDuration > 0 {
		avg = "avg " + s.AverageDuration.Round(100*time.Millisecond).String()
	}

	if s.Failed != 0 {
		relative := float64(s.Failed) / float64(max(s.Completed, 1)) * 100
		return table.Row{statusSymbol(testrun.StatusFailed), "", fmt.Sprintf("%d of %d calls have failed (%.0f%%)", s.Failed, s.Completed, relative), avg}
	}
	if s.Pending != 0 {
		return table.Row{statusSymbol(testrun.StatusInProgress), "", fmt.Sprintf("%d of %d calls are still pending", s.Pending, s.Total), avg}
	}
	return table.Row{statusSymbol(testrun.StatusCompleted), "", fmt.Sprintf("All %d calls have passed", s.Total), avg}
}

func phoneNumber(c testrun.Call) string {
	for _, k := range phoneKeys {
		if s := c.Text(k); s != "" {
			return s
		}
	}
	return ""
}

func score(c testrun.Call) string {
	a, ok := c.Analysis()
	if !ok || a.OverallScore == nil {
		return ""
	}
	switch v := a.OverallScore.(type) {
	case float64:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func duration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return time.Duration(seconds * float64(time.Second)).Truncate(time.Second).String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func statusText(status, text string) string {
	switch testrun.NormalizeStatus(status) {
	case testrun.StatusCompleted:
		return color.GreenString(text)
	case testrun.StatusFailed, testrun.StatusCancelled:
		return color.RedString(text)
	default:
		return color.BlueString(text)
	}
}

func statusSymbol(status string) string {
	switch testrun.NormalizeStatus(status) {
	case testrun.StatusCompleted:
		return color.GreenString("✔")
	case testrun.StatusFailed, testrun.StatusCancelled:
		return color.RedString("✖")
	default:
		return color.BlueString("*")
	}
}

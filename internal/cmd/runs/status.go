package runs

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	reporttable "github.com/hammingai/hammingctl/internal/report/table"
	"github.com/hammingai/hammingctl/internal/testrun"
	"github.com/hammingai/hammingctl/internal/usage"
)

func StatusCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:          "status <id>",
		Short:        "Show the current status of a test run",
		SilenceUsage: true,
		Args:         requireID,
		PreRun: func(cmd *cobra.Command, _ []string) {
			collect(cmd, usage.Output(out))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmds.ValidateOutput(out); err != nil {
				return err
			}
			return status(cmd.Context(), os.Stdout, testRunSvc, args[0], out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", cmds.TextOutput, "Output format to the console. Options: text, json.")

	return cmd
}

func status(ctx context.Context, w io.Writer, svc testrun.Service, id, format string) error {
	run, err := svc.ReadStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get test run status: %w", err)
	}

	switch format {
	case cmds.JSONOutput:
		if err := cmds.RenderJSON(w, run); err != nil {
			return fmt.Errorf("failed to render output: %w", err)
		}
	case cmds.TextOutput:
		renderStatus(w, run, svc.DashboardURL(run.ID))
	}

	return nil
}

func renderStatus(w io.Writer, run testrun.TestRun, url string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(reporttable.DefaultStyle)
	t.SuppressEmptyColumns()

	done := "no"
	if run.Done() {
		done = "yes"
	}

	t.AppendRow(table.Row{"ID", run.ID})
	t.AppendRow(table.Row{"Status", run.Status})
	t.AppendRow(table.Row{"Finished", done})
	if completed, expected, ok := run.Progress(); ok {
		t.AppendRow(table.Row{"Progress", fmt.Sprintf("%d/%d calls completed", completed, expected)})
	}
	t.AppendRow(table.Row{"Dashboard", url})

	t.Render()

	RenderAssignments(w, run.Assignments())
}

// RenderAssignments prints the phone numbers handed out for a test run, if any.
func RenderAssignments(w io.Writer, assignments []testrun.Assignment) {
	if len(assignments) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(reporttable.DefaultStyle)
	t.SuppressEmptyColumns()

	t.AppendHeader(table.Row{"#", "Phone Number", "Test Case", "Region", "Provider"})
	for i, a := range assignments {
		// the order of values must match the order of the header
		t.AppendRow(table.Row{i + 1, a.PhoneNumber, a.TestCase, a.Region, a.Provider})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d phone numbers assigned", len(assignments))})

	_, _ = fmt.Fprintln(w)
	t.Render()
}

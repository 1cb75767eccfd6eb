package runs

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/http"
	reporttable "github.com/hammingai/hammingctl/internal/report/table"
	"github.com/hammingai/hammingctl/internal/testrun"
	"github.com/hammingai/hammingctl/internal/usage"
)

func ListCommand() *cobra.Command {
	var out string
	var direction string
	var limit int

	cmd := &cobra.Command{
		Use: "list",
		Aliases: []string{
			"ls",
		},
		Short:        "Returns the list of recent test runs",
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, _ []string) {
			collect(cmd, usage.Output(out), usage.Direction(direction))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmds.ValidateOutput(out); err != nil {
				return err
			}
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("invalid limit %d", limit)
			}
			return list(cmd.Context(), os.Stdout, testRunSvc, dir, limit, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", cmds.TextOutput, "Output format to the console. Options: text, json.")
	flags.StringVarP(&direction, "direction", "d", "outbound", "Direction of the test runs. Options: outbound, inbound.")
	flags.IntVarP(&limit, "limit", "l", http.DefaultListLimit, "Maximum number of test runs to return.")

	return cmd
}

func list(ctx context.Context, w io.Writer, svc testrun.Service, dir testrun.Direction, limit int, format string) error {
	runs, err := svc.ListTestRuns(ctx, dir, limit)
	if err != nil {
		return fmt.Errorf("failed to get test runs: %w", err)
	}

	switch format {
	case cmds.JSONOutput:
		if runs == nil {
			runs = []testrun.TestRun{}
		}
		if err := cmds.RenderJSON(w, runs); err != nil {
			return fmt.Errorf("failed to render output: %w", err)
		}
	case cmds.TextOutput:
		renderTable(w, runs)
	}

	return nil
}

func renderTable(w io.Writer, runs []testrun.TestRun) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "Cannot find any test runs")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(reporttable.DefaultStyle)
	t.SuppressEmptyColumns()

	t.AppendHeader(table.Row{"ID", "Name", "Status", "Created"})

	for _, r := range runs {
		var name, created string
		r.Field("name", &name)
		if !r.Field("createdAt", &created) {
			r.Field("created_at", &created)
		}

		// the order of values must match the order of the header
		t.AppendRow(table.Row{r.ID, name, r.Status, created})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d test runs in total", len(runs))})

	t.Render()
}

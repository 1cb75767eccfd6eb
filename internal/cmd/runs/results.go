package runs

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/jsonio"
	"github.com/hammingai/hammingctl/internal/report"
	"github.com/hammingai/hammingctl/internal/report/table"
	"github.com/hammingai/hammingctl/internal/testrun"
	"github.com/hammingai/hammingctl/internal/usage"
)

func ResultsCommand() *cobra.Command {
	var out string
	var file string

	cmd := &cobra.Command{
		Use:          "results <id>",
		Short:        "Show the detailed results of a test run",
		SilenceUsage: true,
		Args:         requireID,
		PreRun: func(cmd *cobra.Command, _ []string) {
			collect(cmd, usage.Output(out))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmds.ValidateOutput(out); err != nil {
				return err
			}
			return results(cmd.Context(), os.Stdout, testRunSvc, args[0], out, file)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", cmds.TextOutput, "Output format to the console. Options: text, json.")
	flags.StringVar(&file, "results-file", "", "Also save the results to this file.")

	return cmd
}

func results(ctx context.Context, w io.Writer, svc testrun.Service, id, format, file string) error {
	res, err := svc.ReadResults(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get test run results: %w", err)
	}

	if file != "" {
		if err := jsonio.WriteFile(file, res); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
	}

	switch format {
	case cmds.JSONOutput:
		if err := cmds.RenderJSON(w, res); err != nil {
			return fmt.Errorf("failed to render output: %w", err)
		}
	case cmds.TextOutput:
		var status string
		res.Field("status", &status)

		r := &table.Reporter{Dst: w}
		r.Add(report.TestResult{RunID: id, Status: status, URL: svc.DashboardURL(id), Results: &res})
		r.Render()
	}

	return nil
}

package runs

import (
	"github.com/spf13/cobra"

	"github.com/hammingai/hammingctl/internal/usage"
)

func WaitCommand() *cobra.Command {
	var direction string
	var name string
	wf := WaitFlags{}

	cmd := &cobra.Command{
		Use:          "wait <id>",
		Short:        "Wait for a test run to finish and report its results",
		SilenceUsage: true,
		Args:         requireID,
		PreRun: func(cmd *cobra.Command, _ []string) {
			collect(cmd,
				usage.Direction(direction),
				usage.Wait(true, cfg.Poll.OnTimeout),
				usage.Slack(wf.SlackChannels, wf.SlackSend),
			)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}
			pollOpts, err := cfg.Poll.Options()
			if err != nil {
				return err
			}
			notifier, err := wf.Notifier()
			if err != nil {
				return err
			}

			return Await(cmd.Context(), testRunSvc, args[0], AwaitOptions{
				Direction:   dir,
				Name:        name,
				Poll:        pollOpts,
				ResultsFile: wf.ResultsFile,
				Reporters:   wf.Reporters(),
				Notifier:    notifier,
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&direction, "direction", "d", "outbound", "Direction of the test run. Options: outbound, inbound.")
	flags.StringVar(&name, "name", "", "Name of the test run shown in reports.")
	RegisterPollFlags(flags)
	wf.Register(flags)

	return cmd
}

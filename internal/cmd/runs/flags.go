package runs

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/hammingai/hammingctl/internal/notification"
	"github.com/hammingai/hammingctl/internal/notification/slack"
	"github.com/hammingai/hammingctl/internal/poll"
	"github.com/hammingai/hammingctl/internal/report"
	"github.com/hammingai/hammingctl/internal/report/github"
	"github.com/hammingai/hammingctl/internal/report/table"
)

// SlackTokenEnv is the environment variable holding the slack bot token.
const SlackTokenEnv = "SLACK_TOKEN"

// WaitFlags are the flags of every command that waits on a test run.
type WaitFlags struct {
	ResultsFile   string
	SlackChannels []string
	SlackSend     string
}

// RegisterPollFlags adds the polling flags. Their values are picked up by config.Load.
func RegisterPollFlags(flags *pflag.FlagSet) {
	flags.Duration("poll-interval", poll.DefaultInterval, "Time between two status queries, e.g. '5s'.")
	flags.Duration("poll-timeout", poll.DefaultTimeout, "How long to wait for the test run to finish, e.g. '10m'.")
	flags.String("timeout-policy", poll.TimeoutFail.String(), "What to do when the test run does not finish in time. Options: fail, advisory.")
}

// Register adds the flags to flags.
func (f *WaitFlags) Register(flags *pflag.FlagSet) {
	flags.StringVar(&f.ResultsFile, "results-file", "", "File to save the detailed results to. (default \"<direction>_test_results_<id>.json\")")
	flags.StringSliceVar(&f.SlackChannels, "slack-channel", []string{}, "Slack channels to notify about the outcome. Requires $"+SlackTokenEnv+".")
	flags.StringVar(&f.SlackSend, "slack-send", string(slack.SendOnFailure), "When to notify slack. Options: always, failure, never.")
}

// Reporters returns the reporters that print the outcome of a test run.
func (f *WaitFlags) Reporters() []report.Reporter {
	return []report.Reporter{
		&table.Reporter{Dst: os.Stdout},
		github.NewGithubSummary(),
	}
}

// Notifier returns the slack notifier, or nil if no channel was given.
func (f *WaitFlags) Notifier() (notification.Reporter, error) {
	if len(f.SlackChannels) == 0 {
		return nil, nil
	}
	when, err := slack.ParseWhen(f.SlackSend)
	if err != nil {
		return nil, err
	}
	return &slack.Reporter{
		Token:    os.Getenv(SlackTokenEnv),
		Channels: f.SlackChannels,
		Send:     when,
	}, nil
}

package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/cmd/runs"
	"github.com/hammingai/hammingctl/internal/config"
	"github.com/hammingai/hammingctl/internal/github"
	"github.com/hammingai/hammingctl/internal/jsonio"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/testrun"
	"github.com/hammingai/hammingctl/internal/usage"
	"github.com/hammingai/hammingctl/internal/version"
	"github.com/hammingai/hammingctl/internal/yaml"
)

var (
	runUse   = "run"
	runShort = "Starts a test run against your voice agent"

	testRunSvc testrun.Service
	cfg        config.Config
)

// gFlags contains all flags that are set when 'run' is invoked.
var gFlags = runFlags{}

type runFlags struct {
	agentID        string
	name           string
	description    string
	tags           []string
	timeoutMinutes int
	phoneNumbers   []string
	configFile     string
	wait           bool
	runs.WaitFlags
}

// Command creates the `run` command
func Command(preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	cmd := &cobra.Command{
		Use:              runUse,
		Short:            runShort,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if preRun != nil {
				preRun(cmd, args)
			}
			println("Running version", version.Version)
			return setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&gFlags.agentID, "agent-id", "", "ID of the agent under test.")
	flags.StringVarP(&gFlags.name, "name", "n", "", "Name of the test run. (default \"API Test Run\")")
	flags.StringVar(&gFlags.description, "description", "", "Description of the test run.")
	flags.StringSliceVar(&gFlags.tags, "tag", []string{}, "Tag IDs that select the test cases to run. (default \"default\" if --agent-id is set)")
	flags.IntVar(&gFlags.timeoutMinutes, "timeout-minutes", 0, "Server side time limit of the test run in minutes. (default 10)")
	flags.StringSliceVar(&gFlags.phoneNumbers, "phone-number", []string{}, "Phone numbers to test.")
	flags.StringVarP(&gFlags.configFile, "config-file", "f", "", "JSON or YAML file with the test run definition (scenarios, telephony, settings).")
	flags.BoolVar(&gFlags.wait, "wait", true, "Wait for the test run to finish and report its results.")
	runs.RegisterPollFlags(flags)
	gFlags.WaitFlags.Register(flags)

	cmd.AddCommand(
		directionCommand(testrun.Outbound, "Have Hamming call your agent"),
		directionCommand(testrun.Inbound, "Get phone numbers to call your agent on"),
	)

	return cmd
}

func directionCommand(dir testrun.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:          dir.String(),
		Short:        short,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			tracker := usage.DefaultClient

			go func() {
				tracker.Collect(
					cmds.FullName(cmd),
					usage.Flags(cmd.Flags()),
					usage.Direction(dir.String()),
					usage.Wait(gFlags.wait, cfg.Poll.OnTimeout),
					usage.Slack(gFlags.SlackChannels, gFlags.SlackSend),
				)
				_ = tracker.Close()
			}()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := createOptions(gFlags)
			if err != nil {
				return err
			}
			pollOpts, err := cfg.Poll.Options()
			if err != nil {
				return err
			}
			notifier, err := gFlags.Notifier()
			if err != nil {
				return err
			}

			return Run(cmd.Context(), os.Stdout, testRunSvc, dir, opts, gFlags.wait, runs.AwaitOptions{
				Direction:   dir,
				Name:        opts.Name,
				Poll:        pollOpts,
				ResultsFile: gFlags.ResultsFile,
				Reporters:   gFlags.Reporters(),
				Notifier:    notifier,
			})
		},
	}
}

// Run creates a test run and, if wait is set, waits for it and reports its results.
func Run(ctx context.Context, w io.Writer, svc testrun.Service, dir testrun.Direction, opts testrun.CreateOptions,
	wait bool, awaitOpts runs.AwaitOptions) error {
	log.Info().Str("direction", dir.String()).Msg("Creating test run.")

	run, err := svc.CreateTestRun(ctx, dir, opts)
	if err != nil {
		return fmt.Errorf("failed to create test run: %w", err)
	}
	log.Info().Str("runID", run.ID).Str("status", run.Status).Msg("Test run created.")

	msg.LogDashboard(svc.DashboardURL(run.ID))
	runs.RenderAssignments(w, run.Assignments())

	if !wait {
		log.Info().Msgf("Not waiting for the test run to finish. Check on it with: hammingctl runs wait %s", run.ID)
		return nil
	}

	return runs.Await(ctx, svc, run.ID, awaitOpts)
}

// checkForUpdates check if there is a hammingctl update available.
// updateCheck is replaced in tests.
var updateCheck = checkForUpdates

// setup creates the test run service. The update check only happens once the configuration is known to be valid.
func setup(cmd *cobra.Command) error {
	svc, c, err := cmds.NewService(cmd)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) && cfgErr.Field == "apiKey" {
			color.Red("\nhammingctl requires a valid Hamming API key!\n\n")
			fmt.Println(`Set up your credentials by running:
> hammingctl configure`)
			println()
		}
		return err
	}
	testRunSvc = svc
	cfg = c

	updateCheck(cmd.Context())

	return nil
}

func checkForUpdates(ctx context.Context) {
	v, err := github.DefaultGitHub.IsUpdateAvailable(ctx, version.Version)
	if err != nil {
		return
	}
	if v != "" {
		log.Warn().Msgf("A new version of hammingctl is available (%s)", v)
	}
}

func createOptions(f runFlags) (testrun.CreateOptions, error) {
	opts := testrun.CreateOptions{
		AgentID:        f.agentID,
		Name:           f.name,
		Description:    f.description,
		TagIDs:         f.tags,
		TimeoutMinutes: f.timeoutMinutes,
		PhoneNumbers:   f.phoneNumbers,
	}
	if opts.TimeoutMinutes < 0 {
		return opts, fmt.Errorf("invalid timeout-minutes %d", opts.TimeoutMinutes)
	}

	if f.configFile != "" {
		m, err := readDefinition(f.configFile)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", fmt.Sprintf(msg.InvalidConfigFile, f.configFile), err)
		}
		opts.Config = m
	}

	return opts, nil
}

// readDefinition reads a test run definition. Files ending in .json are decoded as JSON, anything else as YAML.
func readDefinition(name string) (map[string]interface{}, error) {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		var m map[string]interface{}
		if err := jsonio.ReadFile(name, &m); err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.New("top level element is not an object")
		}
		return m, nil
	}

	return yaml.ReadMap(name)
}

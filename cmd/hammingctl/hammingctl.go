package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/cmd/completion"
	"github.com/hammingai/hammingctl/internal/cmd/configure"
	"github.com/hammingai/hammingctl/internal/cmd/run"
	"github.com/hammingai/hammingctl/internal/cmd/runs"
	"github.com/hammingai/hammingctl/internal/config"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/usage"
	"github.com/hammingai/hammingctl/internal/version"
)

var (
	cmdUse   = "hammingctl [OPTIONS] COMMAND [ARG...]"
	cmdShort = "hammingctl"
	cmdLong  = msg.HammingLogo + `
Test your voice agents with Hamming. Start with:

  $ hammingctl configure
  $ hammingctl run outbound --agent-id <agent>`
)

func main() {
	cmd := &cobra.Command{
		Use:              cmdUse,
		Short:            cmdShort,
		Long:             cmdLong,
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		Version:          fmt.Sprintf("%s\n(build %s)", version.Version, version.GitCommit),
	}

	cmd.SetVersionTemplate("hammingctl version {{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "print version")

	flags := cmd.PersistentFlags()
	verbosity := flags.Bool("verbose", false, "turn on verbose logging")
	noColor := flags.Bool("no-color", false, "disable colorized output")
	noTracking := flags.Bool("disable-usage-metrics", false, "Disable usage metrics collection.")
	flags.String("config", "", "YAML file with client settings (apiKey, baseUrl, timeout, maxRetries, poll).")
	flags.String("api-key", "", "Hamming API key. Overrides $HAMMING_API_KEY.")
	flags.String("api-url", config.DefaultBaseURL, "Base URL of the Hamming API.")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout of a single request attempt.")
	flags.Int("max-retries", config.DefaultMaxRetries, "How many times a failed request is retried.")
	flags.Float64("rate-limit", 0, "Maximum number of requests per second. 0 means unlimited.")
	flags.Bool("debug", false, "Log request and response payloads.")

	preRun := func(_ *cobra.Command, _ []string) {
		setupLogging(*verbosity, *noColor)
		usage.DefaultClient.Enabled = !*noTracking
	}
	cmd.PersistentPreRun = preRun

	cmd.AddCommand(
		run.Command(preRun),
		runs.Command(preRun),
		configure.Command(preRun),
		completion.Command(),
	)

	if err := cmd.ExecuteContext(newContext()); err != nil {
		if !errors.Is(err, cmds.ErrTestRunFailed) {
			log.Err(err).Msg("hammingctl failed")
		}
		os.Exit(1)
	}
}

func setupLogging(verbose bool, noColor bool) {
	color.NoColor = noColor
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.DurationFieldInteger = true
	timeFormat := "15:04:05"
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		zerolog.TimeFieldFormat = time.RFC3339Nano
		timeFormat = "15:04:05.000"
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(time.Local)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat, NoColor: noColor})
}

// newContext returns a new context that is canceled when a SIGINT is received.
func newContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		for range signals {
			if ctx.Err() != nil {
				os.Exit(1)
			}

			println("\nWaiting for any in-progress actions to stop... (press Ctrl-c again to exit without waiting)\n")
			cancel()
		}
	}()

	return ctx
}

// Package runs implements the commands that inspect existing test runs.
package runs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/config"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/testrun"
	"github.com/hammingai/hammingctl/internal/usage"
)

var (
	testRunSvc testrun.Service
	cfg        config.Config
)

// Command creates the `runs` command.
func Command(preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "runs",
		Short:            "Interact with test runs",
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if preRun != nil {
				preRun(cmd, args)
			}

			svc, c, err := cmds.NewService(cmd)
			if err != nil {
				return err
			}
			testRunSvc = svc
			cfg = c

			return nil
		},
	}

	cmd.AddCommand(
		StatusCommand(),
		WaitCommand(),
		ResultsCommand(),
		ListCommand(),
	)

	return cmd
}

func collect(cmd *cobra.Command, opts ...usage.Option) {
	tracker := usage.DefaultClient

	go func() {
		tracker.Collect(
			cmds.FullName(cmd),
			append([]usage.Option{usage.Flags(cmd.Flags())}, opts...)...,
		)
		_ = tracker.Close()
	}()
}

func parseDirection(s string) (testrun.Direction, error) {
	dir := testrun.Direction(s)
	if !dir.Valid() {
		return "", fmt.Errorf(msg.InvalidDirection, s)
	}
	return dir, nil
}

func requireID(_ *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return errors.New(msg.MissingTestRunID)
	}
	return nil
}

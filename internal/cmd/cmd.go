package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hammingai/hammingctl/internal/config"
	"github.com/hammingai/hammingctl/internal/http"
)

// Output formats supported by commands that print resources.
const (
	JSONOutput = "json"
	TextOutput = "text"
)

// ErrTestRunFailed is returned by commands whose test run did not pass. The details have already been printed.
var ErrTestRunFailed = errors.New("test run did not pass")

// FullName returns the full command name by concatenating the command names of any parents,
// except the name of the CLI itself.
func FullName(cmd *cobra.Command) string {
	name := ""

	for cmd != nil && cmd.Name() != "hammingctl" {
		// Prepending, because we are looking up names from the bottom up: outbound < run < hammingctl
		// which ends up correctly as 'run outbound' (sans hammingctl).
		name = fmt.Sprintf("%s %s", cmd.Name(), name)
		cmd = cmd.Parent()
	}

	return strings.TrimSpace(name)
}

// ValidateOutput returns an error if out is not a supported output format.
func ValidateOutput(out string) error {
	if out != JSONOutput && out != TextOutput {
		return fmt.Errorf("unknown output format '%s', must be one of '%s', '%s'", out, TextOutput, JSONOutput)
	}
	return nil
}

// RenderJSON writes v as indented JSON to w.
func RenderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewService loads the configuration, taking the flags of cmd into account, and returns a client for it.
func NewService(cmd *cobra.Command) (*http.Hamming, config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: cfgFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, cfg, err
	}
	if cfg.Debug && zerolog.GlobalLevel() > zerolog.DebugLevel {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	client, err := http.NewHamming(cfg)
	if err != nil {
		return nil, cfg, err
	}

	return client, cfg, nil
}

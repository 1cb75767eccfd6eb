package completion

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Command creates the `completion` command
func Command() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(hammingctl completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ hammingctl completion bash > /etc/bash_completion.d/hammingctl
  # macOS:
  $ hammingctl completion bash > /usr/local/etc/bash_completion.d/hammingctl

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ hammingctl completion zsh > "${fpath[1]}/_hammingctl"

  # You will need to start a new shell for this setup to take effect.

fish:

  $ hammingctl completion fish | source

  # To load completions for each session, execute once:
  $ hammingctl completion fish > ~/.config/fish/completions/hammingctl.fish

PowerShell:

  PS> hammingctl completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> hammingctl completion powershell > hammingctl.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd.Root(), args[0], os.Stdout)
		},
	}

	return cmd
}

func generate(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(w)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell '%s'", shell)
}

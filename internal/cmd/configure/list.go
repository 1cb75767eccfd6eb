package configure

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hammingai/hammingctl/internal/credentials"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "list",
		Aliases: []string{
			"ls",
		},
		Short: "Showing the current credentials",
		Run: func(cmd *cobra.Command, args []string) {
			printCreds(os.Stdout, credentials.Get())
		},
	}

	return cmd
}

func printCreds(w io.Writer, creds credentials.Credentials) {
	if !creds.IsValid() {
		_, _ = fmt.Fprintln(w, "No credentials configured. Run 'hammingctl configure' to set them up.")
		return
	}
	_, _ = fmt.Fprintf(w, "API key: %s\n", creds.Masked())
	_, _ = fmt.Fprintf(w, "Source:  %s\n", creds.Source)
}

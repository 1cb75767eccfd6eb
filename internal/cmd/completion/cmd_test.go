package completion

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func Test_generate(t *testing.T) {
	root := &cobra.Command{Use: "hammingctl"}
	root.AddCommand(Command())

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, generate(root, shell, &buf))
			assert.Contains(t, buf.String(), "hammingctl")
		})
	}

	assert.Error(t, generate(root, "tcsh", &bytes.Buffer{}))
}

package configure

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hammingai/hammingctl/internal/credentials"
)

func TestRun_WithFlag(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cliAPIKey = "  k-1234567890  "
	defer func() { cliAPIKey = "" }()

	assert.NoError(t, Run())

	creds := credentials.FromFile()
	assert.Equal(t, "k-1234567890", creds.APIKey)
	assert.FileExists(t, filepath.Join(home, ".hamming", "credentials.yml"))
}

func Test_validateAPIKey(t *testing.T) {
	assert.NoError(t, validateAPIKey("k-123"))
	assert.Error(t, validateAPIKey("   "))
	assert.Error(t, validateAPIKey(42))
}

func Test_printCreds(t *testing.T) {
	testcases := []struct {
		name   string
		creds  credentials.Credentials
		expect string
	}{
		{
			name:   "it should mask the API key",
			creds:  credentials.Credentials{APIKey: "1234567-8912-3456", Source: "credentials file"},
			expect: "API key: *************3456\nSource:  credentials file\n",
		},
		{
			name:   "it should hint at configure when empty",
			creds:  credentials.Credentials{},
			expect: "No credentials configured. Run 'hammingctl configure' to set them up.\n",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			printCreds(&buf, tc.creds)
			assert.Equal(t, tc.expect, buf.String())
		})
	}
}

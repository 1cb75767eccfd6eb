package ci

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearProviders(t *testing.T) {
	t.Helper()
	for _, p := range append(Providers, Provider{Envar: "CI"}) {
		t.Setenv(p.Envar, "")
		os.Unsetenv(p.Envar)
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "detect CI", env: map[string]string{"CI": "1"}, want: true},
		{name: "detect build identifier", env: map[string]string{"BUILD_NUMBER": "123"}, want: true},
		{name: "detect nothing", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviders(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := IsAvailable(); got != tt.want {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCI(t *testing.T) {
	clearProviders(t)
	t.Setenv("GITHUB_RUN_ID", "42")
	t.Setenv("GITHUB_SERVER_URL", "https://github.com")
	t.Setenv("GITHUB_REPOSITORY", "hammingai/agents")
	t.Setenv("GITHUB_REF_NAME", "main")
	t.Setenv("GITHUB_SHA", "abc123")
	t.Setenv("GITHUB_ACTOR", "octocat")

	want := CI{
		Provider:  GitHub,
		OriginURL: "https://github.com/hammingai/agents/actions/runs/42",
		Repo:      "hammingai/agents",
		RefName:   "main",
		SHA:       "abc123",
		User:      "octocat",
	}
	assert.Equal(t, want, GetCI())
}

func TestGetCI_None(t *testing.T) {
	clearProviders(t)
	assert.Equal(t, CI{Provider: None}, GetCI())
	assert.Equal(t, None, GetProvider())
}

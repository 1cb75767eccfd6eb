package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hammingai/hammingctl/internal/yaml"
	"github.com/rs/zerolog/log"
)

// EnvAPIKey is the environment variable holding the API key.
const EnvAPIKey = "HAMMING_API_KEY"

// Credentials contains the API key used to authenticate against the testing service.
type Credentials struct {
	APIKey string `yaml:"apiKey"`
	Source string `yaml:"-"`
}

// Get returns the configured credentials.
// Effectively a convenience wrapper around FromEnv, followed by a call to FromFile.
//
// The lookup order is:
//  1. Environment variables (see FromEnv)
//  2. Credentials file (see FromFile)
func Get() Credentials {
	if c := FromEnv(); c.IsValid() {
		return c
	}

	return FromFile()
}

// FromEnv reads the credentials from the user environment.
func FromEnv() Credentials {
	return Credentials{
		APIKey: strings.TrimSpace(os.Getenv(EnvAPIKey)),
		Source: fmt.Sprintf("environment variable($%s)", EnvAPIKey),
	}
}

// FromFile reads the credentials that stored in the default file location.
func FromFile() Credentials {
	return fromFile(defaultFilepath())
}

// fromFile reads the credentials from path.
func fromFile(path string) Credentials {
	var c Credentials
	if err := yaml.ReadFile(path, &c); err != nil {
		if os.IsNotExist(err) {
			// not a real error but a valid usecase when credentials have not been persisted yet
			return Credentials{}
		}

		log.Error().Msgf("failed to read credentials: %v", err)
		return Credentials{}
	}

	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Source = "credentials file"
	return c
}

// ToFile stores the provided credentials in the default file location.
func ToFile(c Credentials) error {
	return toFile(c, defaultFilepath())
}

// toFile stores the provided credentials into the file at path.
func toFile(c Credentials, path string) error {
	if os.MkdirAll(filepath.Dir(path), 0700) != nil {
		return fmt.Errorf("unable to create configuration folder")
	}
	return yaml.WriteFile(path, c, 0600)
}

// defaultFilepath returns the default location of the credentials file.
// It will be based on the user home directory, if defined, or under the current working directory otherwise.
func defaultFilepath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".hamming", "credentials.yml")
}

// IsValid checks whether an API key is present.
func (c *Credentials) IsValid() bool {
	return c.APIKey != ""
}

// Masked returns the API key with all but the last four characters hidden.
func (c *Credentials) Masked() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

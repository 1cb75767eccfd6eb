// Package github looks up hammingctl releases.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/hammingai/hammingctl/internal/version"
)

// DefaultGitHub is a preconfigured instance of GitHub.
var DefaultGitHub = GitHub{
	HTTPClient: &http.Client{Timeout: 2 * time.Second},
	URL:        "https://api.github.com",
}

// GitHub represents the GitHub HTTP API client.
type GitHub struct {
	HTTPClient *http.Client
	URL        string
}

// IsUpdateAvailable returns the latest version if it's semantically higher than the given one. Lookup failures
// are not errors; an update check never gets in the way of a command.
func (c *GitHub) IsUpdateAvailable(ctx context.Context, current string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/repos/hammingai/hammingctl/releases/latest", c.URL), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var r struct {
		Name    string `json:"name"`
		TagName string `json:"tag_name"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", nil
	}

	if isUpdateRequired(current, r.TagName) {
		return r.TagName, nil
	}
	return "", nil
}

func isUpdateRequired(currentVersion, githubVersion string) bool {
	currentV := currentVersion
	if !strings.HasPrefix(currentV, "v") {
		currentV = fmt.Sprintf("v%s", currentV)
	}
	githubV := githubVersion
	if !strings.HasPrefix(githubV, "v") {
		githubV = fmt.Sprintf("v%s", githubV)
	}
	if !semver.IsValid(currentV) || !semver.IsValid(githubV) {
		return false
	}
	return semver.Compare(currentV, githubV) < 0
}

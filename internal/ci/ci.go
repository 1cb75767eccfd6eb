// Package ci detects whether hammingctl runs as part of a CI pipeline, and on which one.
package ci

import (
	"fmt"
	"os"
)

// CI describes the pipeline run that executes hammingctl.
type CI struct {
	Provider  Provider
	OriginURL string
	Repo      string
	RefName   string // branch
	SHA       string
	User      string
}

// Provider represents a CI Provider.
type Provider struct {
	// Name of the Provider.
	Name string

	// The environment variable by which the Provider is detected.
	Envar string
}

var (
	AppVeyor  = Provider{Name: "AppVeyor", Envar: "APPVEYOR_BUILD_NUMBER"}
	AWS       = Provider{Name: "AWS CodeBuild", Envar: "CODEBUILD_INITIATOR"}
	Azure     = Provider{Name: "Azure DevOps", Envar: "Agent_BuildDirectory"}
	Bitbucket = Provider{Name: "Bitbucket", Envar: "BITBUCKET_BUILD_NUMBER"}
	Buildkite = Provider{Name: "Buildkite", Envar: "BUILDKITE"}
	Circle    = Provider{Name: "CircleCI", Envar: "CIRCLECI"}
	GitHub    = Provider{Name: "GitHub", Envar: "GITHUB_RUN_ID"}
	GitLab    = Provider{Name: "GitLab", Envar: "CI_PIPELINE_ID"}
	Jenkins   = Provider{Name: "Jenkins", Envar: "BUILD_NUMBER"}
	Travis    = Provider{Name: "Travis CI", Envar: "TRAVIS_BUILD_ID"}

	// None represents a non-CI environment.
	None = Provider{}
)

// Providers contains a list of all supported providers, in detection order.
var Providers = []Provider{AppVeyor, AWS, Azure, Bitbucket, Buildkite, Circle, GitHub, GitLab, Jenkins, Travis}

// GetProvider returns a CI Provider if this code is executed in a known CI environment.
// Returns None if it's not a CI environment or if the CI Provider could not be detected.
func GetProvider() Provider {
	for _, p := range Providers {
		if _, ok := os.LookupEnv(p.Envar); ok {
			return p
		}
	}

	return None
}

// IsAvailable returns true if hammingctl runs in any CI environment, known provider or not.
func IsAvailable() bool {
	if _, ok := os.LookupEnv("CI"); ok {
		return true
	}
	return GetProvider() != None
}

// GetCI returns the details of the current pipeline run. Only some providers expose them, the others yield a CI
// with just the Provider set.
func GetCI() CI {
	provider := GetProvider()
	c := CI{Provider: provider}

	switch provider {
	case GitHub:
		c.OriginURL = fmt.Sprintf("%s/%s/actions/runs/%s", os.Getenv("GITHUB_SERVER_URL"), os.Getenv("GITHUB_REPOSITORY"), os.Getenv("GITHUB_RUN_ID"))
		c.Repo = os.Getenv("GITHUB_REPOSITORY")
		c.RefName = os.Getenv("GITHUB_REF_NAME")
		c.SHA = os.Getenv("GITHUB_SHA")
		c.User = os.Getenv("GITHUB_ACTOR")
	case GitLab:
		c.OriginURL = os.Getenv("CI_JOB_URL")
		c.Repo = os.Getenv("CI_PROJECT_PATH")
		c.RefName = os.Getenv("CI_COMMIT_REF_NAME")
		c.SHA = os.Getenv("CI_COMMIT_SHA")
		c.User = os.Getenv("GITLAB_USER_LOGIN")
	case Jenkins:
		c.OriginURL = os.Getenv("BUILD_URL")
		c.RefName = os.Getenv("GIT_BRANCH")
		c.SHA = os.Getenv("GIT_COMMIT")
	case AppVeyor:
		c.OriginURL = os.Getenv("APPVEYOR_URL")
		c.Repo = os.Getenv("APPVEYOR_REPO_NAME")
		c.RefName = os.Getenv("APPVEYOR_REPO_BRANCH")
		c.SHA = os.Getenv("APPVEYOR_REPO_COMMIT")
		c.User = os.Getenv("APPVEYOR_REPO_COMMIT_AUTHOR")
	}

	return c
}

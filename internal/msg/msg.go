package msg

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// HammingLogo is an eyecatcher printed before a test run is started.
const HammingLogo = `
  _   _                           _
 | | | | __ _ _ __ ___  _ __ ___ (_)_ __   __ _
 | |_| |/ _' | '_ ' _ \| '_ ' _ \| | '_ \ / _' |
 |  _  | (_| | | | | | | | | | | | | | | | (_| |
 |_| |_|\__,_|_| |_| |_|_| |_| |_|_|_| |_|\__, |
                                          |___/`

// SignupMessage explains where to find the API key.
const SignupMessage = `Don't have an account? Signup here:
https://app.hamming.ai

Already have an account? Create an API key here:
https://app.hamming.ai/settings`

// TimeoutAdvisory is shown when a test run outlives the poll timeout and the advisory policy is in effect.
const TimeoutAdvisory = `The test run is still in progress. Check back later with:
  hammingctl runs wait %s`

// LogTimeoutAdvisory prints out a formatted and color coded version of TimeoutAdvisory.
func LogTimeoutAdvisory(runID string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("\n%s: %s\n\n", yellow("NOTICE"), fmt.Sprintf(TimeoutAdvisory, runID))
}

// LogTestSuccess prints out a test success summary statement.
func LogTestSuccess() {
	log.Info().Msg("┌─────────────────────┐")
	log.Info().Msg(" All calls have passed! ")
	log.Info().Msg("└─────────────────────┘")
}

// LogTestFailure prints out a test failure summary statement.
func LogTestFailure(errors, total int) {
	relative := 100.0
	if total > 0 {
		relative = float64(errors) / float64(total) * 100
	}
	msg := fmt.Sprintf(" %d of %d calls have failed (%.0f%%) ", errors, total, relative)
	dashes := strings.Repeat("─", len(msg)-2)
	log.Error().Msgf("┌%s┐", dashes)
	log.Error().Msg(msg)
	log.Error().Msgf("└%s┘", dashes)
}

// LogDashboard prints out where to follow the test run in the browser.
func LogDashboard(url string) {
	blue := color.New(color.FgBlue).SprintFunc()
	log.Info().Msgf("Open the dashboard to follow along: %s", blue(url))
}

// Package progress shows a spinner while hammingctl is waiting on the service.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

var spinnerSpeed = 1 * time.Second
var spinnerInstance = spinner.New(spinner.CharSets[14], spinnerSpeed)

// Enabled reports whether the spinner is drawn. It is off unless stdout is a terminal, so that logs redirected to a
// file or collected by a CI system are not cluttered.
var Enabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// Show starts showing a progress spinner.
func Show(text string, args ...interface{}) *spinner.Spinner {
	message := " " + fmt.Sprintf(text, args...)
	spinnerInstance.Suffix = message
	if !Enabled {
		return spinnerInstance
	}
	spinnerInstance.Stop()
	spinnerInstance.Start()
	return spinnerInstance
}

// Update changes the text next to the spinner.
func Update(text string, args ...interface{}) {
	spinnerInstance.Lock()
	spinnerInstance.Suffix = " " + fmt.Sprintf(text, args...)
	spinnerInstance.Unlock()
}

// Stop stops the progress spinner.
func Stop() {
	spinnerInstance.Stop()
}

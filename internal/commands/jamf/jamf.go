// Package jamf talks to the Jamf binary on the endpoint: it triggers policy
// events (used to deliver missing PPD files) and shows jamfHelper dialogs to
// the console user.
package jamf

import (
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/primalcurve/better-jamf-printer-policy/internal/commands/runtime"
	"github.com/primalcurve/better-jamf-printer-policy/internal/config"
)

// Dialog settings for the error window shown to the console user.
const (
	windowTitle    = "Printer Installation"
	windowHeading  = "An error occurred."
	windowIcon     = "/System/Library/CoreServices/CoreTypes.bundle/Contents/Resources/AlertStopIcon.icns"
	defaultMessage = "A problem occurred processing your request. Please contact the Help Desk for assistance."
)

// TriggerPolicy runs jamf policy -event so the management server can deliver
// the PPD package to the endpoint. Blocks until the policy run finishes.
func TriggerPolicy(paths config.Paths, event string) error {
	log.Printf("[INFO]: triggering jamf policy event %q to deliver the PPD", event)

	out, err := exec.Command(paths.Jamf, "policy", "-event", event).CombinedOutput()
	if err != nil {
		log.Printf("[ERROR]: jamf policy event %q failed, reason: %v, output: %s", event, err, strings.TrimSpace(string(out)))
		return fmt.Errorf("jamf policy event %q failed: %w", event, err)
	}

	if strings.Contains(string(out), "No policies were found") {
		log.Printf("[ERROR]: no jamf policy responded to event %q", event)
		return fmt.Errorf("no jamf policy responded to event %q", event)
	}

	log.Printf("[INFO]: jamf policy event %q has finished", event)
	return nil
}

// NotifyError shows a blocking jamfHelper error dialog in the console user's
// context. Skipped silently when nobody is at the console. Dialog problems
// are logged and swallowed so they never mask the run's own outcome.
func NotifyError(paths config.Paths, message string) {
	if message == "" {
		message = defaultMessage
	}

	uid, err := runtime.GetConsoleUserUID()
	if err != nil {
		log.Printf("[ERROR]: could not find the console user, skipping error dialog, reason: %v", err)
		return
	}
	if uid == "" {
		log.Println("[INFO]: nobody is logged in at the console, skipping error dialog")
		return
	}

	// Windows must be spawned in the user's launchd context.
	// Reference: https://breardon.home.blog/2019/09/18/sudo-u-vs-launchctl-asuser/
	cmd := exec.Command(paths.Launchctl, "asuser", uid,
		paths.JamfHelper, "-windowType", "utility",
		"-title", windowTitle,
		"-heading", windowHeading,
		"-icon", windowIcon,
		"-description", message,
		"-button1", "Close",
		"-timeout", "60", "-lockHUD")
	if err := cmd.Run(); err != nil {
		log.Printf("[ERROR]: could not show jamfHelper dialog, reason: %v", err)
	}
}

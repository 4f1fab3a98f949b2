package device

import (
	"fmt"
	"os/exec"
	"strings"

	"geminios/internal/logging"
)

// LaunchResult is the outcome of a native app launch attempt. Unknown
// targets are reported here, never as an error.
type LaunchResult struct {
	OK      bool
	Message string
}

// Opener hands a platform URL to the host. Swappable for tests.
type Opener func(url string) error

// Launcher resolves app names to platform URL schemes.
type Launcher struct {
	open Opener
}

// schemeTable maps lowercase app names to their launch URLs.
var schemeTable = map[string]string{
	"spotify":   "spotify://",
	"twitter":   "twitter://",
	"instagram": "instagram://",
	"maps":      "geo:0,0?q=",
	"sms":       "sms:",
	"tel":       "tel:",
	"camera":    "camera:",
	"mail":      "mailto:",
	"whatsapp":  "whatsapp://",
}

// NewLauncher returns a launcher using xdg-open.
func NewLauncher() *Launcher {
	return &Launcher{open: func(url string) error {
		return exec.Command("xdg-open", url).Start()
	}}
}

// NewLauncherWithOpener returns a launcher with a custom opener.
func NewLauncherWithOpener(open Opener) *Launcher {
	return &Launcher{open: open}
}

// Launch resolves the app name (case-insensitive) and opens its URL.
func (l *Launcher) Launch(appName string) LaunchResult {
	url, ok := schemeTable[strings.ToLower(appName)]
	if !ok {
		return LaunchResult{OK: false, Message: fmt.Sprintf("No protocol handler for %s", appName)}
	}
	if err := l.open(url); err != nil {
		logging.Shell("launch %s failed: %v", appName, err)
		return LaunchResult{OK: false, Message: fmt.Sprintf("Failed to launch %s", appName)}
	}
	logging.Shell("launched %s via %s", appName, url)
	return LaunchResult{OK: true, Message: fmt.Sprintf("Launching %s...", appName)}
}

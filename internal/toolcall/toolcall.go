// Package toolcall extracts structured commands from free-text model
// responses and applies their local side effects. The grammar is
// [[CMD:NAME]] or [[CMD:NAME:ARG]]; only the first match per response is
// honored.
package toolcall

import (
	"regexp"
	"strings"

	"geminios/internal/device"
	"geminios/internal/logging"
)

// Command names understood by the dispatcher.
const (
	CmdLaunch = "LAUNCH"
	CmdWifi   = "WIFI"
	CmdClear  = "CLEAR"
)

var cmdPattern = regexp.MustCompile(`\[\[CMD:([^:\]]+)(?::([^\]]*))?\]\]`)

// Call is one extracted command tag.
type Call struct {
	Raw  string // the full bracket expression as matched
	Name string
	Arg  string
}

// Parse finds the first command tag in text. The returned display string
// is text with the matched expression removed verbatim (exact substring,
// first occurrence only); surrounding whitespace is preserved as-is. When
// no tag matches, display equals text and found is false.
func Parse(text string) (display string, call Call, found bool) {
	m := cmdPattern.FindStringSubmatch(text)
	if m == nil {
		return text, Call{}, false
	}
	call = Call{Raw: m[0], Name: m[1], Arg: m[2]}
	return strings.Replace(text, m[0], "", 1), call, true
}

// Dispatcher applies command side effects against the device.
type Dispatcher struct {
	state    *device.State
	launcher *device.Launcher
	notifs   *device.NotificationCenter
}

// NewDispatcher wires a dispatcher to the device surfaces it mutates.
func NewDispatcher(state *device.State, launcher *device.Launcher, notifs *device.NotificationCenter) *Dispatcher {
	return &Dispatcher{state: state, launcher: launcher, notifs: notifs}
}

// Dispatch runs the side effect for a parsed call and returns the
// user-visible action log. Unknown command names perform nothing and
// return ok=false; the caller has already stripped the tag.
func (d *Dispatcher) Dispatch(call Call) (actionLog string, ok bool) {
	switch call.Name {
	case CmdLaunch:
		res := d.launcher.Launch(call.Arg)
		logging.Shell("dispatch LAUNCH %q ok=%t", call.Arg, res.OK)
		return res.Message, true
	case CmdWifi:
		d.state.ToggleWifi()
		return "Toggling Uplink...", true
	case CmdClear:
		d.notifs.Clear()
		return "Buffer Cleared.", true
	default:
		logging.Shell("ignoring unknown command %q", call.Name)
		return "", false
	}
}

// Apply is the full pipeline: parse text, dispatch the first command if
// present, and return the display text plus the action log ("" when no
// dispatch produced one).
func (d *Dispatcher) Apply(text string) (display, actionLog string) {
	display, call, found := Parse(text)
	if !found {
		return display, ""
	}
	actionLog, _ = d.Dispatch(call)
	return display, actionLog
}

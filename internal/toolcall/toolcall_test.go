package toolcall

import (
	"testing"

	"geminios/internal/device"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *device.State, *device.NotificationCenter, *[]string) {
	t.Helper()
	var opened []string
	state := device.NewState()
	launcher := device.NewLauncherWithOpener(func(url string) error {
		opened = append(opened, url)
		return nil
	})
	notifs := device.NewNotificationCenter()
	return NewDispatcher(state, launcher, notifs), state, notifs, &opened
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantDisplay string
		wantFound   bool
		wantName    string
		wantArg     string
	}{
		{
			name:        "wifi with empty arg preserves surrounding whitespace",
			in:          "Sure. [[CMD:WIFI:]] Done.",
			wantDisplay: "Sure.  Done.",
			wantFound:   true,
			wantName:    "WIFI",
			wantArg:     "",
		},
		{
			name:        "launch with arg",
			in:          "[[CMD:LAUNCH:spotify]]",
			wantDisplay: "",
			wantFound:   true,
			wantName:    "LAUNCH",
			wantArg:     "spotify",
		},
		{
			name:        "bare command without arg",
			in:          "Cleared. [[CMD:CLEAR]]",
			wantDisplay: "Cleared. ",
			wantFound:   true,
			wantName:    "CLEAR",
			wantArg:     "",
		},
		{
			name:        "only first match honored",
			in:          "[[CMD:WIFI:]] and [[CMD:CLEAR]]",
			wantDisplay: " and [[CMD:CLEAR]]",
			wantFound:   true,
			wantName:    "WIFI",
			wantArg:     "",
		},
		{
			name:        "no command",
			in:          "Just a normal reply.",
			wantDisplay: "Just a normal reply.",
			wantFound:   false,
		},
		{
			name:        "malformed tag is left alone",
			in:          "[[CMD:]] nothing here",
			wantDisplay: "[[CMD:]] nothing here",
			wantFound:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display, call, found := Parse(tt.in)
			if display != tt.wantDisplay {
				t.Errorf("display = %q, want %q", display, tt.wantDisplay)
			}
			if found != tt.wantFound {
				t.Fatalf("found = %t, want %t", found, tt.wantFound)
			}
			if found {
				if call.Name != tt.wantName || call.Arg != tt.wantArg {
					t.Errorf("call = %q/%q, want %q/%q", call.Name, call.Arg, tt.wantName, tt.wantArg)
				}
			}
		})
	}
}

func TestApplyWifiFlipsFlagOnce(t *testing.T) {
	d, state, _, _ := newTestDispatcher(t)

	display, actionLog := d.Apply("Sure. [[CMD:WIFI:]] Done.")
	if display != "Sure.  Done." {
		t.Errorf("display = %q, want %q", display, "Sure.  Done.")
	}
	if actionLog != "Toggling Uplink..." {
		t.Errorf("actionLog = %q", actionLog)
	}
	if state.Wifi() {
		t.Error("wifi flag was not flipped exactly once")
	}
}

func TestApplyUnknownCommandStripsWithoutDispatch(t *testing.T) {
	d, state, notifs, opened := newTestDispatcher(t)
	notifs.Push(device.Notification{App: "Test", Content: "keep me"})

	display, actionLog := d.Apply("Rebooting. [[CMD:REBOOT:now]]")
	if display != "Rebooting. " {
		t.Errorf("display = %q, want %q", display, "Rebooting. ")
	}
	if actionLog != "" {
		t.Errorf("unknown command produced action log %q", actionLog)
	}
	if !state.Wifi() {
		t.Error("unknown command touched wifi state")
	}
	if notifs.Len() != 1 {
		t.Error("unknown command touched notifications")
	}
	if len(*opened) != 0 {
		t.Error("unknown command reached the launcher")
	}
}

func TestApplyLaunch(t *testing.T) {
	d, _, _, opened := newTestDispatcher(t)

	display, actionLog := d.Apply("On it. [[CMD:LAUNCH:spotify]]")
	if display != "On it. " {
		t.Errorf("display = %q", display)
	}
	if actionLog != "Launching spotify..." {
		t.Errorf("actionLog = %q", actionLog)
	}
	if len(*opened) != 1 || (*opened)[0] != "spotify://" {
		t.Errorf("opened = %v", *opened)
	}
}

func TestApplyClearEmptiesNotifications(t *testing.T) {
	d, _, notifs, _ := newTestDispatcher(t)
	notifs.Simulate()
	notifs.Simulate()

	_, actionLog := d.Apply("[[CMD:CLEAR]]")
	if actionLog != "Buffer Cleared." {
		t.Errorf("actionLog = %q", actionLog)
	}
	if notifs.Len() != 0 {
		t.Errorf("notifications not cleared, len = %d", notifs.Len())
	}
}

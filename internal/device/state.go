// Package device models the simulated handset: radio and battery state,
// the native app launch table, and the local notification center.
package device

import (
	"sync"

	"geminios/internal/logging"
)

// State holds the mutable device indicators. Battery and load are
// simulated values refreshed by the shell's tick loop.
type State struct {
	mu      sync.RWMutex
	wifi    bool
	battery int
	load    int
}

// NewState returns a device with the radio on and a full battery.
func NewState() *State {
	return &State{wifi: true, battery: 100, load: 12}
}

// Wifi reports whether the network indicator is on.
func (s *State) Wifi() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wifi
}

// ToggleWifi flips the network indicator and returns the new value.
func (s *State) ToggleWifi() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wifi = !s.wifi
	logging.Shell("wifi toggled to %t", s.wifi)
	return s.wifi
}

// Battery returns the simulated battery percentage.
func (s *State) Battery() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.battery
}

// SetBattery clamps and stores the battery percentage.
func (s *State) SetBattery(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	s.mu.Lock()
	s.battery = pct
	s.mu.Unlock()
}

// Load returns the simulated system load percentage.
func (s *State) Load() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load
}

// SetLoad stores the simulated system load percentage.
func (s *State) SetLoad(pct int) {
	s.mu.Lock()
	s.load = pct
	s.mu.Unlock()
}

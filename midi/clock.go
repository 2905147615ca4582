// Package midi adapts the engine's Clock/Sink ports to real MIDI hardware
// via gitlab.com/gomidi/midi/v2, and scans for connected controllers.
package midi

import "time"

// RealClock implements engine.Clock over a monotonic start instant. NowMS
// returns milliseconds elapsed since construction, never wall-clock time,
// so it is immune to clock adjustments.
type RealClock struct {
	start time.Time
}

// NewRealClock starts the clock at the current instant.
func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

// NowMS returns elapsed milliseconds since NewRealClock was called.
func (c *RealClock) NowMS() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

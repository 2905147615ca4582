package midi

import "go-sequence-arp/engine"

// StubClock is a manually-advanced engine.Clock for tests that exercise real
// MIDI adapters without real hardware.
type StubClock struct {
	MS uint64
}

// NowMS returns the current stubbed time.
func (c *StubClock) NowMS() uint64 {
	return c.MS
}

// Advance moves the stub clock forward by delta milliseconds.
func (c *StubClock) Advance(delta uint64) {
	c.MS += delta
}

// StubSink is an engine.Sink that records every message sent to it instead
// of touching a MIDI port.
type StubSink struct {
	Sent []engine.MidiMsg
}

// Send records the message.
func (s *StubSink) Send(status, data1, data2 byte, tMS uint64) {
	s.Sent = append(s.Sent, engine.MidiMsg{Status: status, Data1: data1, Data2: data2, TMS: tMS})
}

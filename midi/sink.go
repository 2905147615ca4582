package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortSink implements engine.Sink by writing to a real gomidi output port.
// tMS is informational only: the underlying driver sends immediately, so a
// PortSink is only as sample-accurate as the host's poll interval.
type PortSink struct {
	port   drivers.Out
	send   func(gomidi.Message) error
	portID string
}

// NewPortSink opens an output port for sending via gomidi.SendTo.
func NewPortSink(port drivers.Out) (*PortSink, error) {
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port %s: %w", port.String(), err)
	}
	return &PortSink{port: port, send: send, portID: port.String()}, nil
}

// Send translates the engine's (status, data1, data2) into the matching
// gomidi.NoteOn/NoteOff message on the low nibble's channel. Errors are
// swallowed: the engine core treats the sink as infallible.
func (s *PortSink) Send(status, data1, data2 byte, tMS uint64) {
	ch := status & 0x0F
	nib := status >> 4
	switch nib {
	case 0x9:
		if data2 == 0 {
			s.send(gomidi.NoteOff(ch, data1))
		} else {
			s.send(gomidi.NoteOn(ch, data1, data2))
		}
	case 0x8:
		s.send(gomidi.NoteOff(ch, data1))
	}
}

// PortID returns the name this sink was opened against.
func (s *PortSink) PortID() string {
	return s.portID
}

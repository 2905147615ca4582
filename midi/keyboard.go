package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-sequence-arp/engine"
)

// KeyboardController listens to one class-compliant MIDI input port and
// forwards the note-on/note-off events it sees as engine.MidiMsg values
// through a 64-message buffer; while that buffer is full, further events are
// dropped. It has no LED or other feedback path, only inbound notes.
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	msgs     chan engine.MidiMsg
}

// NewKeyboardController opens inPort and starts forwarding note events.
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
		msgs:   make(chan engine.MidiMsg, 64),
	}

	if inPort == nil {
		return kb, nil
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		var channel, note, velocity uint8
		switch {
		case msg.GetNoteOn(&channel, &note, &velocity):
			status := byte(0x90 | (channel & 0x0F))
			select {
			case kb.msgs <- engine.MidiMsg{Status: status, Data1: note, Data2: velocity}:
			default:
			}
		case msg.GetNoteOff(&channel, &note, &velocity):
			status := byte(0x80 | (channel & 0x0F))
			select {
			case kb.msgs <- engine.MidiMsg{Status: status, Data1: note, Data2: velocity}:
			default:
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", id, err)
	}
	kb.stopFunc = stop
	return kb, nil
}

// ID returns the underlying port name.
func (kb *KeyboardController) ID() string {
	return kb.id
}

// Messages returns the channel of forwarded note-on/note-off events.
func (kb *KeyboardController) Messages() <-chan engine.MidiMsg {
	return kb.msgs
}

// Close stops listening and closes the message channel.
func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.msgs)
	return nil
}

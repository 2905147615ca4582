package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver
)

// DeviceEventType distinguishes connect from disconnect in a DeviceEvent.
type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceEvent is emitted when a keyboard connects or disconnects.
type DeviceEvent struct {
	Type       DeviceEventType
	Controller *KeyboardController
	ID         string
}

// DeviceManager hot-plug scans for class-compliant MIDI keyboards: any input
// port that isn't explicitly excluded (software loopback/through ports) is
// treated as a keyboard.
type DeviceManager struct {
	controllers map[string]*KeyboardController
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager returns a DeviceManager that scans once a second.
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]*KeyboardController),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

// Events returns the channel of connect/disconnect events.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of currently connected keyboards.
func (dm *DeviceManager) Controllers() map[string]*KeyboardController {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	snap := make(map[string]*KeyboardController, len(dm.controllers))
	for k, v := range dm.controllers {
		snap[k] = v
	}
	return snap
}

// Run starts the polling loop; it blocks, so run it in a goroutine.
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()
	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	type portsResult struct {
		inPorts []drivers.In
	}
	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts()}
	}()

	var inPorts []drivers.In
	select {
	case result := <-ch:
		inPorts = result.inPorts
	case <-time.After(3 * time.Second):
		return // driver hung on this poll; try again next tick
	}

	seenIDs := make(map[string]bool)
	for i, inPort := range inPorts {
		name := strings.ToLower(inPort.String())
		if isVirtualLoopback(name) {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := NewKeyboardController(id, inPorts[i])
		if err != nil {
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()

		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: kb, ID: id}
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]*KeyboardController)
}

func isVirtualLoopback(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "through") || strings.Contains(name, "loopback")
}

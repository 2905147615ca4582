// Package host orchestrates the engine's ~1ms poll loop and serialises
// every mutation onto that single loop goroutine, so CLI and TUI
// front-ends never touch the engine from their own goroutines.
package host

import (
	"context"
	"sync"
	"time"

	"go-sequence-arp/config"
	"go-sequence-arp/debug"
	"go-sequence-arp/engine"
	"go-sequence-arp/midi"
)

// tickInterval matches the ~1ms poll cadence the engine's catch-up
// scheduling is designed around.
const tickInterval = time.Millisecond

// command is a closure queued onto the host loop, plus a channel the
// caller waits on so Do() only returns once it has actually run.
type command struct {
	fn   func(*engine.PatternEngine)
	done chan struct{}
}

// Manager owns the one engine instance, runs its tick loop, and is the
// sole writer CLI and TUI front-ends dispatch mutations through.
type Manager struct {
	Engine    *engine.PatternEngine
	DeviceMgr *midi.DeviceManager

	cmdChan    chan command
	stopChan   chan struct{}
	UpdateChan chan struct{} // notifies a front-end after every tick interval, paused or not

	mu          sync.RWMutex
	running     bool
	paused      bool
	focused     int
	controllers map[string]*midi.KeyboardController
}

// NewManager wires an engine and a device manager together. The engine is
// expected to already have its sink/clock set; NewManager never touches
// MIDI hardware itself.
func NewManager(e *engine.PatternEngine, deviceMgr *midi.DeviceManager) *Manager {
	return &Manager{
		Engine:      e,
		DeviceMgr:   deviceMgr,
		cmdChan:     make(chan command, 32),
		stopChan:    make(chan struct{}),
		UpdateChan:  make(chan struct{}, 1),
		controllers: make(map[string]*midi.KeyboardController),
	}
}

// Run starts the host tick loop and the device/keyboard forwarding loops.
// It blocks until ctx is cancelled or Stop is called; callers run it in a
// goroutine.
func (m *Manager) Run(ctx context.Context) {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()

	go m.deviceEventLoop(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			return
		case <-m.stopChan:
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			return
		case cmd := <-m.cmdChan:
			cmd.fn(m.Engine)
			close(cmd.done)
		case <-ticker.C:
			m.mu.RLock()
			paused := m.paused
			m.mu.RUnlock()
			if !paused {
				m.Engine.Tick()
			}
			m.notifyUpdate()
		}
	}
}

// Paused reports whether the tick loop is currently withholding Tick()
// calls from the engine — a supplemented play/stop transport the core
// state machine itself has no concept of.
func (m *Manager) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// SetPaused toggles whether Run() calls Engine.Tick() each interval.
func (m *Manager) SetPaused(p bool) {
	m.mu.Lock()
	m.paused = p
	m.mu.Unlock()
}

// Stop ends the host loop started by Run.
func (m *Manager) Stop() {
	close(m.stopChan)
}

// Do queues fn to run on the host loop goroutine and blocks until it has
// run, giving CLI/TUI callers read-after-write consistency without ever
// touching the engine from another goroutine.
func (m *Manager) Do(fn func(*engine.PatternEngine)) {
	done := make(chan struct{})
	m.cmdChan <- command{fn: fn, done: done}
	<-done
}

// FocusedPattern returns the pattern index the CLI/TUI currently has
// selected.
func (m *Manager) FocusedPattern() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.focused
}

// SetFocusedPattern updates the selected pattern index. An index outside
// 0..PatternCount-1 is ignored.
func (m *Manager) SetFocusedPattern(i int) {
	if i < 0 || i >= engine.PatternCount {
		return
	}
	m.mu.Lock()
	m.focused = i
	m.mu.Unlock()
}

// SaveConfig captures the running engine's state and persists it.
func (m *Manager) SaveConfig() error {
	var cfg config.Config
	m.Do(func(e *engine.PatternEngine) { cfg.CaptureFrom(e) })
	return cfg.Save()
}

func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// deviceEventLoop watches the device manager for keyboard connects and
// forwards their note events onto the host loop as OnMIDIIn commands.
func (m *Manager) deviceEventLoop(ctx context.Context) {
	if m.DeviceMgr == nil {
		return
	}
	go m.DeviceMgr.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.DeviceMgr.Events():
			if !ok {
				return
			}
			switch event.Type {
			case midi.DeviceConnected:
				debug.Log("midi", "keyboard connected: %s", event.ID)
				m.mu.Lock()
				m.controllers[event.ID] = event.Controller
				m.mu.Unlock()
				go m.forwardKeyboard(event.Controller)
			case midi.DeviceDisconnected:
				debug.Log("midi", "keyboard disconnected: %s", event.ID)
				m.mu.Lock()
				delete(m.controllers, event.ID)
				m.mu.Unlock()
			}
		}
	}
}

func (m *Manager) forwardKeyboard(kb *midi.KeyboardController) {
	for msg := range kb.Messages() {
		msg := msg
		m.Do(func(e *engine.PatternEngine) { e.OnMIDIIn(msg) })
	}
}

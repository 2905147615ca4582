package engine

import "math"

// Status names the per-pattern Idle/Armed/Sounding state machine.
type Status string

const (
	StatusIdle     Status = "Idle"
	StatusArmed    Status = "Armed"
	StatusSounding Status = "Sounding"
)

// Option configures a PatternEngine at construction time.
type Option func(*PatternEngine)

// WithSeed overrides the default probability RNG seed. Tests rely on the
// default; hosts that want independent randomness across instances can
// pass a distinct seed per engine.
func WithSeed(seed uint32) Option {
	return func(e *PatternEngine) {
		e.rng = newXorshift32(seed)
	}
}

// PatternEngine owns global engine config, the four pattern config/state
// pairs, the chord, and the pending-off queue. It is single-threaded: every
// method must be called from the one thread the host designates.
type PatternEngine struct {
	cfg      EngineConfig
	patterns [PatternCount]PatternConfig
	states   [PatternCount]PatternState
	chord    *ChordState
	offQueue *PendingOffQueue
	sink     Sink
	clock    Clock
	rng      *xorshift32
}

// NewPatternEngine constructs an engine with the documented default
// EngineConfig, four default PatternConfigs, and the fixed default RNG seed.
func NewPatternEngine(sink Sink, clock Clock, opts ...Option) *PatternEngine {
	e := &PatternEngine{
		sink:     sink,
		clock:    clock,
		cfg:      DefaultEngineConfig(),
		chord:    NewChordState(),
		offQueue: NewPendingOffQueue(),
		rng:      newXorshift32(DefaultRNGSeed),
	}
	for i := range e.patterns {
		e.patterns[i] = *NewPatternConfig()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetEngineConfig replaces the global engine config. Invalid values (bpm<=0,
// overlap is unconstrained) are clamped lazily wherever they're consumed,
// never here — setting the same config twice is a pure no-op.
func (e *PatternEngine) SetEngineConfig(cfg EngineConfig) {
	e.cfg = cfg
}

// EngineConfig returns the current global engine config.
func (e *PatternEngine) EngineConfig() EngineConfig {
	return e.cfg
}

// Pattern returns a mutable pointer to pattern i's config, or nil if i is
// out of range. Callers may write fields directly (CLI setters, UI
// round-trip); values are clamped at read time inside the engine, so an
// out-of-range write here never corrupts scheduling.
func (e *PatternEngine) Pattern(i int) *PatternConfig {
	if i < 0 || i >= PatternCount {
		return nil
	}
	return &e.patterns[i]
}

// PatternStatus reports the Idle/Armed/Sounding state machine value for
// pattern i.
func (e *PatternEngine) PatternStatus(i int) Status {
	if i < 0 || i >= PatternCount {
		return StatusIdle
	}
	cfg := &e.patterns[i]
	st := &e.states[i]
	if cfg.normalizedLength() == 0 {
		return StatusIdle
	}
	if st.NextStepMS == 0 {
		return StatusIdle
	}
	if st.LastOnValid {
		return StatusSounding
	}
	return StatusArmed
}

// PatternState returns a copy of pattern i's runtime state for read-only
// introspection (CLI `show`, TUI grid).
func (e *PatternEngine) PatternState(i int) PatternState {
	if i < 0 || i >= PatternCount {
		return PatternState{}
	}
	return e.states[i]
}

// Chord returns the held notes in ascending order for read-only display.
func (e *PatternEngine) Chord() []uint8 {
	return e.chord.Notes()
}

// OnMIDIIn mutates ChordState from an inbound note-on/note-off. A note-on
// with velocity 0 is treated as a note-off; any other status is ignored.
// Input velocity never affects playback — step velocity is authoritative.
func (e *PatternEngine) OnMIDIIn(msg MidiMsg) {
	nib := statusNibble(msg.Status)
	switch {
	case nib == 0x9 && msg.Data2 > 0:
		e.chord.NoteOn(msg.Data1)
	case nib == 0x8 || (nib == 0x9 && msg.Data2 == 0):
		e.chord.NoteOff(msg.Data1)
	default:
		// ignore
	}
}

// Tick advances the engine by sampling the clock once, draining due
// note-offs, clearing any pattern whose sounding tail just drained, and then
// advancing each non-empty pattern by zero or more steps. Missed step
// boundaries are all replayed at their logical times (catch-up) — nothing
// is coalesced or dropped.
func (e *PatternEngine) Tick() {
	now := e.clock.NowMS()
	e.offQueue.FlushDue(now, e.sink)

	for i := range e.states {
		st := &e.states[i]
		if st.LastOnValid && e.offQueue.Drained(st.LastOnCh, st.LastOnNote) {
			st.LastOnValid = false
		}
	}

	for i := range e.patterns {
		e.tickPattern(i, now)
	}
}

func (e *PatternEngine) tickPattern(i int, now uint64) {
	cfg := &e.patterns[i]
	st := &e.states[i]

	length := cfg.normalizedLength()
	if length == 0 {
		return
	}
	if st.NextStepMS == 0 {
		st.NextStepMS = now
	}

	bpm := e.cfg.normalizedBPM()
	division := cfg.normalizedDivision()
	dur := stepDurationMS(bpm, division)

	for now >= st.NextStepMS {
		e.executeStep(i, st.NextStepMS)
		st.NextStepMS += dur
	}
}

// executeStep runs the per-step algorithm for pattern i at logical time
// nowStep.
func (e *PatternEngine) executeStep(i int, nowStep uint64) {
	cfg := &e.patterns[i]
	st := &e.states[i]

	length := cfg.normalizedLength()
	if length == 0 {
		return
	}

	idx := int(st.StepPos % uint64(length))
	s := cfg.Steps[idx]
	s.Normalize()
	st.StepPos = (st.StepPos + 1) % uint64(length)

	if !s.Enabled {
		return
	}
	if e.rng.intn1to100() > s.Probability {
		return
	}
	base, ok := e.chord.ByIndex(s.NoteIndex)
	if !ok {
		return
	}

	note := clampInt(int(base)+12*s.Octave, 0, 127)
	channel := cfg.normalizedChannel()
	chNibble := byte((channel - 1) & 0x0F)

	bpm := e.cfg.normalizedBPM()
	division := cfg.normalizedDivision()
	stepMS := stepDurationMS(bpm, division)
	gateMS := stepMS * uint64(s.GatePercent) / 100
	if gateMS < 1 {
		gateMS = 1
	}

	onAt := nowStep
	minOff := onAt + gateMS
	offAt := minOff + uint64(e.cfg.OverlapMS)

	if st.LastOnValid {
		e.offQueue.ExtendLast(st.LastOnCh, st.LastOnNote, onAt+uint64(e.cfg.OverlapMS))
	}

	e.sink.Send(0x90|chNibble, byte(note), byte(s.Velocity), onAt)
	e.offQueue.Schedule(offAt, chNibble, byte(note), e.sink)

	st.LastOnValid = true
	st.LastOnNote = byte(note)
	st.LastOnCh = chNibble
}

// stepDurationMS computes the duration of one step in milliseconds:
// floor(60000 / bpm / division), clamped to a minimum of 1ms. bpm<=0 falls
// back to 120 and division<1 falls back to 2.
func stepDurationMS(bpm float64, division int) uint64 {
	if bpm <= 0 {
		bpm = 120.0
	}
	if division < 1 {
		division = 2
	}
	ms := math.Floor(60000.0 / bpm / float64(division))
	if ms < 1 {
		ms = 1
	}
	return uint64(ms)
}

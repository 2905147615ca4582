package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go-sequence-arp/config"
	"go-sequence-arp/engine"
	"go-sequence-arp/host"
	"go-sequence-arp/midi"
)

func withTempHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
}

func newTestManager(t *testing.T) *host.Manager {
	t.Helper()
	sink := &midi.StubSink{}
	clock := &midi.StubClock{}
	e := engine.NewPatternEngine(sink, clock)
	m := host.NewManager(e, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go m.Run(ctx)
	return m
}

func runLines(m *host.Manager, lines ...string) string {
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	Run(m, in, &out)
	return out.String()
}

func TestBPMCommandUpdatesEngine(t *testing.T) {
	m := newTestManager(t)
	runLines(m, "bpm 140", "quit")

	var bpm float64
	m.Do(func(e *engine.PatternEngine) { bpm = e.EngineConfig().BPM })
	if bpm != 140 {
		t.Fatalf("expected bpm=140, got %v", bpm)
	}
}

func TestDivAndLenClampPatternIndex(t *testing.T) {
	m := newTestManager(t)
	// pattern index 99 clamps to PatternCount-1, not an error.
	runLines(m, "div 99 8", "len 99 16", "quit")

	var div, length int
	m.Do(func(e *engine.PatternEngine) {
		p := e.Pattern(engine.PatternCount - 1)
		div, length = p.Division, p.Length
	})
	if div != 8 || length != 16 {
		t.Fatalf("expected div=8 len=16 on last pattern, got div=%d len=%d", div, length)
	}
}

func TestStepSettersAndEnableToggle(t *testing.T) {
	m := newTestManager(t)
	runLines(m,
		"idx 0 0 3",
		"vel 0 0 90",
		"gate 0 0 75",
		"oct 0 0 -2",
		"prob 0 0 50",
		"off 0 0",
		"quit",
	)

	var s engine.Step
	m.Do(func(e *engine.PatternEngine) { s = e.Pattern(0).Steps[0] })
	if s.NoteIndex != 3 || s.Velocity != 90 || s.GatePercent != 75 || s.Octave != -2 || s.Probability != 50 {
		t.Fatalf("step 0 did not take all setters: %+v", s)
	}
	if s.Enabled {
		t.Fatalf("expected step 0 disabled after 'off 0 0'")
	}

	runLines(m, "on 0 0", "quit")
	m.Do(func(e *engine.PatternEngine) { s = e.Pattern(0).Steps[0] })
	if !s.Enabled {
		t.Fatalf("expected step 0 enabled after 'on 0 0'")
	}
}

func TestShowReportsPatternStatus(t *testing.T) {
	m := newTestManager(t)
	out := runLines(m, "show", "quit")
	if !strings.Contains(out, "pattern 0:") {
		t.Fatalf("expected show output to list pattern 0, got: %s", out)
	}
}

func TestUnknownCommandDoesNotCrashREPL(t *testing.T) {
	m := newTestManager(t)
	out := runLines(m, "bogus", "bpm 100", "quit")
	if !strings.Contains(out, "unknown command") {
		t.Fatalf("expected an unknown-command message, got: %s", out)
	}
	var bpm float64
	m.Do(func(e *engine.PatternEngine) { bpm = e.EngineConfig().BPM })
	if bpm != 100 {
		t.Fatalf("commands after an unknown one should still run, bpm=%v", bpm)
	}
}

func TestSaveThenLoadRoundTripsBPM(t *testing.T) {
	withTempHome(t)
	m := newTestManager(t)
	runLines(m, "bpm 133", "save", "quit")

	if _, err := config.Load(); err != nil {
		t.Fatalf("config.Load() after save: %v", err)
	}

	m2 := newTestManager(t)
	runLines(m2, "load", "quit")
	var bpm float64
	m2.Do(func(e *engine.PatternEngine) { bpm = e.EngineConfig().BPM })
	if bpm != 133 {
		t.Fatalf("expected loaded bpm=133, got %v", bpm)
	}
}

func TestQuitStopsTheLoopBeforeEOF(t *testing.T) {
	m := newTestManager(t)
	done := make(chan struct{})
	go func() {
		runLines(m, "quit")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return promptly on 'quit'")
	}
}

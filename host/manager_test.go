package host

import (
	"context"
	"testing"
	"time"

	"go-sequence-arp/engine"
	"go-sequence-arp/midi"
)

func TestDoRunsOnHostLoopAndBlocksUntilApplied(t *testing.T) {
	sink := &midi.StubSink{}
	clock := &midi.StubClock{}
	e := engine.NewPatternEngine(sink, clock)
	m := NewManager(e, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Do(func(e *engine.PatternEngine) {
		e.SetEngineConfig(engine.EngineConfig{BPM: 200, OverlapMS: 5})
	})

	var bpm float64
	m.Do(func(e *engine.PatternEngine) { bpm = e.EngineConfig().BPM })
	if bpm != 200 {
		t.Fatalf("expected Do to have applied BPM=200 before returning, got %v", bpm)
	}
}

func TestSetFocusedPatternIgnoresOutOfRange(t *testing.T) {
	sink := &midi.StubSink{}
	clock := &midi.StubClock{}
	e := engine.NewPatternEngine(sink, clock)
	m := NewManager(e, nil)

	m.SetFocusedPattern(2)
	if m.FocusedPattern() != 2 {
		t.Fatalf("expected focused pattern 2, got %d", m.FocusedPattern())
	}
	m.SetFocusedPattern(99)
	if m.FocusedPattern() != 2 {
		t.Fatalf("out-of-range SetFocusedPattern should be a no-op, got %d", m.FocusedPattern())
	}
}

func TestStopEndsRunLoop(t *testing.T) {
	sink := &midi.StubSink{}
	clock := &midi.StubClock{}
	e := engine.NewPatternEngine(sink, clock)
	m := NewManager(e, nil)

	ctx := context.Background()
	runDone := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(runDone)
	}()

	// Give the loop a tick to start before stopping it.
	time.Sleep(5 * time.Millisecond)
	m.Stop()

	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after Stop")
	}
}

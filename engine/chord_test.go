package engine

import "testing"

func assertAscending(t *testing.T, notes []uint8) {
	for i := 1; i < len(notes); i++ {
		if notes[i] <= notes[i-1] {
			t.Fatalf("chord not strictly ascending: %v", notes)
		}
	}
}

func TestChordStateInsertionOrder(t *testing.T) {
	c := NewChordState()
	c.NoteOn(64)
	c.NoteOn(60)
	c.NoteOn(67)

	assertAscending(t, c.Notes())
	if got := c.Notes(); len(got) != 3 || got[0] != 60 || got[1] != 64 || got[2] != 67 {
		t.Fatalf("unexpected chord contents: %v", got)
	}
}

func TestChordStateDedup(t *testing.T) {
	c := NewChordState()
	c.NoteOn(60)
	c.NoteOn(60)
	if c.Size() != 1 {
		t.Fatalf("NoteOn(60) twice should dedup, size=%d", c.Size())
	}
}

func TestChordStateNoteOffRoundTrip(t *testing.T) {
	c := NewChordState()
	c.NoteOn(60)
	c.NoteOn(64)
	c.NoteOff(60)
	if got := c.Notes(); len(got) != 1 || got[0] != 64 {
		t.Fatalf("after note_off(60): %v", got)
	}
	c.NoteOff(60) // absent, no-op
	if c.Size() != 1 {
		t.Fatalf("note_off on absent note mutated chord: size=%d", c.Size())
	}
}

func TestChordStateOverflowDropsNewest(t *testing.T) {
	c := NewChordState()
	for n := uint8(1); n <= 8; n++ {
		c.NoteOn(n)
	}
	c.NoteOn(100) // 9th note, should be dropped
	if c.Size() != 8 {
		t.Fatalf("chord should cap at 8, got %d", c.Size())
	}
	notes := c.Notes()
	for i, n := range notes {
		if n != uint8(i+1) {
			t.Fatalf("9th note should not displace held notes: %v", notes)
		}
	}
}

func TestChordStateByIndex(t *testing.T) {
	c := NewChordState()
	c.NoteOn(60)
	c.NoteOn(64)
	c.NoteOn(67)

	if n, ok := c.ByIndex(1); !ok || n != 60 {
		t.Fatalf("ByIndex(1) = %d, %v", n, ok)
	}
	if n, ok := c.ByIndex(3); !ok || n != 67 {
		t.Fatalf("ByIndex(3) = %d, %v", n, ok)
	}
	if _, ok := c.ByIndex(0); ok {
		t.Fatalf("ByIndex(0) should be empty (REST sentinel)")
	}
	if _, ok := c.ByIndex(4); ok {
		t.Fatalf("ByIndex(4) should be empty, chord only has 3 notes")
	}
}

func TestChordStateClear(t *testing.T) {
	c := NewChordState()
	c.NoteOn(60)
	c.NoteOn(64)
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Clear() should empty the chord, size=%d", c.Size())
	}
}

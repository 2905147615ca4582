package engine

import "testing"

// recordingSink collects every (status, data1, data2, tMS) sent through it,
// standing in for a real MIDI port in tests.
type recordingSink struct {
	sent []MidiMsg
}

func (s *recordingSink) Send(status, data1, data2 byte, tMS uint64) {
	s.sent = append(s.sent, MidiMsg{Status: status, Data1: data1, Data2: data2, TMS: tMS})
}

func TestPendingOffQueueScheduleAndFlush(t *testing.T) {
	q := NewPendingOffQueue()
	sink := &recordingSink{}

	q.Schedule(100, 0, 60, sink)
	q.Schedule(200, 0, 64, sink)

	q.FlushDue(150, sink)
	if len(sink.sent) != 1 {
		t.Fatalf("expected one due off at t=150, got %d", len(sink.sent))
	}
	if sink.sent[0].Data1 != 60 || sink.sent[0].TMS != 150 {
		t.Fatalf("unexpected flushed entry: %+v", sink.sent[0])
	}
	if q.Count() != 1 {
		t.Fatalf("survivor should remain queued, count=%d", q.Count())
	}

	q.FlushDue(300, sink)
	if len(sink.sent) != 2 || q.Count() != 0 {
		t.Fatalf("second entry should drain by t=300: sent=%d count=%d", len(sink.sent), q.Count())
	}
}

func TestPendingOffQueueExtendLastPicksNewest(t *testing.T) {
	q := NewPendingOffQueue()
	sink := &recordingSink{}

	q.Schedule(100, 0, 60, sink)
	q.Schedule(150, 0, 60, sink) // second entry for the same (ch, note)

	q.ExtendLast(0, 60, 500)

	// Only the newest entry for (0,60) is raised; the older one keeps its
	// own deadline.
	if q.entries[0].atMS != 100 || q.entries[1].atMS != 500 {
		t.Fatalf("expected only the newest (0,60) entry raised to 500, entries=%+v", q.entries[:q.count])
	}

	q.FlushDue(1000, sink)
	count := 0
	for _, m := range sink.sent {
		if m.Data1 == 60 {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("both scheduled offs for note 60 should eventually flush, got %d", count)
	}
}

func TestPendingOffQueueExtendLastNoMatchIsNoop(t *testing.T) {
	q := NewPendingOffQueue()
	sink := &recordingSink{}
	q.Schedule(100, 0, 60, sink)
	q.ExtendLast(0, 99, 500) // no entry for note 99

	q.FlushDue(100, sink)
	if len(sink.sent) != 1 || sink.sent[0].TMS != 100 {
		t.Fatalf("unmatched ExtendLast should not have touched the entry: %+v", sink.sent)
	}
}

func TestPendingOffQueueOverflowFallsBackInline(t *testing.T) {
	q := NewPendingOffQueue()
	sink := &recordingSink{}

	for i := 0; i < PendingOffCapacity; i++ {
		q.Schedule(uint64(10000+i), 0, uint8(i%128), sink)
	}
	if q.Count() != PendingOffCapacity {
		t.Fatalf("queue should be full, count=%d", q.Count())
	}
	if len(sink.sent) != 0 {
		t.Fatalf("filling to capacity should not have emitted anything yet")
	}

	// 65th schedule overflows -> immediate inline emission, count stays put.
	q.Schedule(99999, 1, 77, sink)
	if q.Count() != PendingOffCapacity {
		t.Fatalf("overflow must not grow the queue, count=%d", q.Count())
	}
	if len(sink.sent) != 1 {
		t.Fatalf("overflow should emit exactly one inline off, got %d", len(sink.sent))
	}
	if sink.sent[0].Status != 0x81 || sink.sent[0].Data1 != 77 || sink.sent[0].TMS != 99999 {
		t.Fatalf("unexpected overflow emission: %+v", sink.sent[0])
	}
}

func TestPendingOffQueueDrained(t *testing.T) {
	q := NewPendingOffQueue()
	sink := &recordingSink{}
	q.Schedule(100, 0, 60, sink)

	if q.Drained(0, 60) {
		t.Fatalf("note should not be reported drained while still queued")
	}
	q.FlushDue(100, sink)
	if !q.Drained(0, 60) {
		t.Fatalf("note should be drained once its off has flushed")
	}
}

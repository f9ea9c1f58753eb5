package replstate

import (
	"testing"

	"github.com/redisgtid/gtidcore/gtid"
	"github.com/redisgtid/gtidcore/syncmode"
)

func TestRecordExecutedUpdatesSetAndIndex(t *testing.T) {
	s := New()
	s.RecordExecuted("A", 1, 100)
	s.RecordExecuted("A", 2, 200)

	snap := s.Snapshot()
	if want := "A:1-2"; snap.Executed.String() != want {
		t.Fatalf("Executed = %q, want %q", snap.Executed.String(), want)
	}

	cont := snap.Seq.PSync(0)
	if want := "A:1-2"; cont.String() != want {
		t.Fatalf("sequence index PSync(0) = %q, want %q", cont.String(), want)
	}
}

func TestRecordLostDoesNotTouchExecuted(t *testing.T) {
	s := New()
	s.RecordExecuted("A", 1, 100)
	s.RecordLost("A", 2, 3)

	snap := s.Snapshot()
	if want := "A:1"; snap.Executed.String() != want {
		t.Fatalf("Executed = %q, want %q", snap.Executed.String(), want)
	}
	if want := "A:2-3"; snap.Lost.String() != want {
		t.Fatalf("Lost = %q, want %q", snap.Lost.String(), want)
	}
}

func TestSnapshotIsIndependentOfFurtherMutation(t *testing.T) {
	s := New()
	s.RecordExecuted("A", 1, 100)

	snap := s.Snapshot()
	s.RecordExecuted("A", 2, 200)

	if want := "A:1"; snap.Executed.String() != want {
		t.Fatalf("earlier Snapshot().Executed mutated by later RecordExecuted: got %q, want %q", snap.Executed.String(), want)
	}
}

func TestTrimReclaimsSequenceIndexOnly(t *testing.T) {
	s := New()
	s.RecordExecuted("A", 1, 100)
	s.RecordExecuted("A", 2, 200)

	s.Trim(150)

	snap := s.Snapshot()
	if want := "A:1-2"; snap.Executed.String() != want {
		t.Fatalf("Trim mutated Executed: got %q, want %q", snap.Executed.String(), want)
	}
	if got := snap.Seq.EarliestOffset(); got != 200 {
		t.Fatalf("EarliestOffset() after Trim(150) = %d, want 200", got)
	}
}

func TestShiftModeUpdatesRegister(t *testing.T) {
	s := New()
	s.Modes.Reset(syncmode.ModePSync, 0, syncmode.PSyncDetail{ReplID: "repl-1"}, syncmode.XSyncDetail{})

	s.ShiftMode(syncmode.ModeXSync, 100, syncmode.PSyncDetail{}, syncmode.XSyncDetail{ReplID: "repl-2"})

	cur, prev := s.Snapshot().Cur, s.Snapshot().Prev
	if cur.Mode != syncmode.ModeXSync || cur.From != 101 {
		t.Fatalf("cur after ShiftMode = %+v, want mode=xsync from=101", cur)
	}
	if prev.Mode != syncmode.ModePSync {
		t.Fatalf("prev.Mode after ShiftMode = %v, want psync", prev.Mode)
	}
}

func TestFromSnapshotRestoresState(t *testing.T) {
	executed := gtid.NewSet()
	executed.AddRange("A", 1, 5)
	lost := gtid.NewSet()
	lost.AddRange("A", 6, 6)

	orig := New()
	orig.RecordExecuted("A", 1, 100)
	orig.RecordExecuted("A", 5, 500)
	seq := orig.Snapshot().Seq

	restored := FromSnapshot(executed, lost, seq, syncmode.ModeXSync)

	snap := restored.Snapshot()
	if snap.Executed.String() != executed.String() {
		t.Fatalf("restored Executed = %q, want %q", snap.Executed.String(), executed.String())
	}
	if snap.Lost.String() != lost.String() {
		t.Fatalf("restored Lost = %q, want %q", snap.Lost.String(), lost.String())
	}
	if snap.Cur.Mode != syncmode.ModeXSync {
		t.Fatalf("restored Cur.Mode = %v, want xsync", snap.Cur.Mode)
	}
}

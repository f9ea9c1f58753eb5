package syncmode

import (
	"strings"
	"testing"

	"github.com/redisgtid/gtidcore/gtid"
	"github.com/redisgtid/gtidcore/seqindex"
)

func TestFullResyncReplyFormat(t *testing.T) {
	got := FullResyncReply("repl-1", 500)
	if want := "+FULLRESYNC repl-1 500\r\n"; got != want {
		t.Fatalf("FullResyncReply = %q, want %q", got, want)
	}
}

func TestContinueReplyFormats(t *testing.T) {
	tests := []struct {
		name          string
		replID        string
		offset        int64
		includeOffset bool
		want          string
	}{
		{"bare", "", 0, false, "+CONTINUE\r\n"},
		{"replid only", "repl-1", 0, false, "+CONTINUE repl-1\r\n"},
		{"replid and offset", "repl-1", 200, true, "+CONTINUE repl-1 200\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContinueReply(tt.replID, tt.offset, tt.includeOffset)
			if got != tt.want {
				t.Fatalf("ContinueReply(...) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestXFullResyncReplyFormat(t *testing.T) {
	lost := gtid.NewSet()
	lost.AddRange("A", 1, 2)

	got := XFullResyncReply(lost, "master-uuid", "repl-1", 500)
	want := "+XFULLRESYNC GTID.LOST A:1-2 MASTER.UUID master-uuid REPLID repl-1 REPLOFF 500\r\n"
	if got != want {
		t.Fatalf("XFullResyncReply = %q, want %q", got, want)
	}
}

func TestXContinueReplyOmitsEmptyLost(t *testing.T) {
	cont := gtid.NewSet()
	cont.AddRange("A", 1, 5)
	lost := gtid.NewSet()

	got := XContinueReply(cont, lost, "master-uuid", "repl-1", 100)
	if strings.Contains(got, "GTID.LOST") {
		t.Fatalf("XContinueReply included GTID.LOST for an empty lost set: %q", got)
	}
	want := "+XCONTINUE GTID.SET A:1-5 MASTER.UUID master-uuid REPLID repl-1 REPLOFF 100\r\n"
	if got != want {
		t.Fatalf("XContinueReply = %q, want %q", got, want)
	}
}

func TestXContinueReplyIncludesNonEmptyLost(t *testing.T) {
	cont := gtid.NewSet()
	cont.AddRange("A", 1, 5)
	lost := gtid.NewSet()
	lost.AddRange("A", 6, 6)

	got := XContinueReply(cont, lost, "master-uuid", "repl-1", 100)
	if !strings.Contains(got, "GTID.LOST A:6") {
		t.Fatalf("XContinueReply missing GTID.LOST clause: %q", got)
	}
}

func buildXSyncFixture(t *testing.T) (*gtid.Set, *gtid.Set, *seqindex.Index, ModeRecord, ModeRecord) {
	t.Helper()
	executed := gtid.NewSet()
	executed.AddRange("A", 1, 5)
	lost := gtid.NewSet()

	seq := seqindex.New()
	offset := int64(100)
	for g := gtid.GNO(1); g <= 5; g++ {
		seq.Append("A", g, offset)
		offset += 100
	}

	cur := ModeRecord{Mode: ModeXSync, From: 0}
	prev := ModeRecord{}
	return executed, lost, seq, cur, prev
}

func TestComposeXSyncWithinGapBudgetContinues(t *testing.T) {
	executed, lost, seq, cur, prev := buildXSyncFixture(t)

	peerSet := gtid.NewSet()
	peerSet.AddRange("A", 1, 2)

	req := XSyncRequest{GTIDSet: peerSet, Lost: gtid.NewSet(), MaxGap: 10}
	reply := ComposeXSync(req, executed, lost, seq, "master-uuid", "repl-1", cur, prev)

	if reply.FullResync {
		t.Fatalf("ComposeXSync chose full resync within gap budget: %q", reply.Text)
	}
	if !strings.HasPrefix(reply.Text, "+XCONTINUE") {
		t.Fatalf("ComposeXSync reply = %q, want +XCONTINUE prefix", reply.Text)
	}
}

func TestComposeXSyncBeyondGapBudgetFullResyncs(t *testing.T) {
	executed, lost, seq, cur, prev := buildXSyncFixture(t)

	peerSet := gtid.NewSet()
	peerSet.AddRange("A", 1, 2)

	req := XSyncRequest{GTIDSet: peerSet, Lost: gtid.NewSet(), MaxGap: 1}
	reply := ComposeXSync(req, executed, lost, seq, "master-uuid", "repl-1", cur, prev)

	if !reply.FullResync {
		t.Fatalf("ComposeXSync stayed on +XCONTINUE beyond gap budget: %q", reply.Text)
	}
	if !strings.HasPrefix(reply.Text, "+XFULLRESYNC") {
		t.Fatalf("ComposeXSync full-resync reply = %q, want +XFULLRESYNC prefix", reply.Text)
	}
}

func TestComposeXSyncCaughtUpPeerContinues(t *testing.T) {
	executed, lost, seq, cur, prev := buildXSyncFixture(t)

	peerSet := gtid.NewSet()
	peerSet.AddRange("A", 1, 5)

	req := XSyncRequest{GTIDSet: peerSet, Lost: gtid.NewSet(), MaxGap: 0}
	reply := ComposeXSync(req, executed, lost, seq, "master-uuid", "repl-1", cur, prev)

	if reply.FullResync {
		t.Fatalf("ComposeXSync full-resynced a fully caught-up peer: %q", reply.Text)
	}
}

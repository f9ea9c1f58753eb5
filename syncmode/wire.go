package syncmode

import (
	"fmt"
	"strings"

	"github.com/redisgtid/gtidcore/gtid"
	"github.com/redisgtid/gtidcore/seqindex"
)

// Wire reply prefixes, §6.
const (
	replyFullResync  = "+FULLRESYNC"
	replyContinue    = "+CONTINUE"
	replyXFullResync = "+XFULLRESYNC"
	replyXContinue   = "+XCONTINUE"
)

const crlf = "\r\n"

// FullResyncReply formats a psync-mode full resync reply.
func FullResyncReply(replID string, offset int64) string {
	return fmt.Sprintf("%s %s %d%s", replyFullResync, replID, offset, crlf)
}

// ContinueReply formats a psync-mode partial resync reply, matching
// "+CONTINUE [<replid> [<offset>]]". An empty replID omits both replid and
// offset; otherwise offset is written only when includeOffset is true.
func ContinueReply(replID string, offset int64, includeOffset bool) string {
	if replID == "" {
		return replyContinue + crlf
	}
	if !includeOffset {
		return fmt.Sprintf("%s %s%s", replyContinue, replID, crlf)
	}
	return fmt.Sprintf("%s %s %d%s", replyContinue, replID, offset, crlf)
}

// XFullResyncReply formats an xsync-mode full resync reply.
func XFullResyncReply(lost *gtid.Set, masterUUID, replID string, offset int64) string {
	return fmt.Sprintf("%s GTID.LOST %s MASTER.UUID %s REPLID %s REPLOFF %d%s",
		replyXFullResync, lost.String(), masterUUID, replID, offset, crlf)
}

// XContinueReply formats an xsync-mode partial resync reply. The
// GTID.LOST clause is omitted when lost is empty.
func XContinueReply(cont, lost *gtid.Set, masterUUID, replID string, offset int64) string {
	var sb strings.Builder
	sb.WriteString(replyXContinue)
	sb.WriteString(" GTID.SET ")
	sb.WriteString(cont.String())
	if lost != nil && len(lost.UUIDSets()) > 0 {
		sb.WriteString(" GTID.LOST ")
		sb.WriteString(lost.String())
	}
	fmt.Fprintf(&sb, " MASTER.UUID %s REPLID %s REPLOFF %d", masterUUID, replID, offset)
	sb.WriteString(crlf)
	return sb.String()
}

// XSyncRequest is a parsed XSYNC wire request (§6).
type XSyncRequest struct {
	GTIDSet *gtid.Set
	Lost    *gtid.Set // may be nil/empty
	MaxGap  int64
}

// XSyncReply is the composed outcome of handling an XSYNC request: either
// a full-resync signal, or a continue reply plus the byte limit (if any)
// the caller must cap the stream at before the peer re-handshakes.
type XSyncReply struct {
	FullResync bool
	Text       string
	// Limit is > 0 only when the reply must be capped at a prev-mode
	// boundary (Result.Type == Prev or Switch).
	Limit int64
}

// ComposeXSync implements §4.E "Composing the reply" for the xsync
// protocol: it locates the peer's request against (cur, prev), computes
// the GTID continue/lost sets against the sequence index, and decides
// between +XCONTINUE and +XFULLRESYNC based on the divergence gap.
//
// gtid_cont is taken directly from the sequence index's own XSync scan:
// seq.XSync already restricts to the peer's in-scope uuids and excludes
// whatever gnos the peer reports holding, so it IS the continuation set
// the spec's "gtid_cont = serverGtidSet − gtid_xsync" describes — no
// second pass over serverExecuted is needed or correct here (see
// DESIGN.md for why re-deriving it via PSync(continue_offset) instead
// produces the complement of the right answer).
//
// gap is computed as the size of the symmetric difference between each
// side's *effective* executed set (executed minus that side's own lost
// set): this is the concrete reading adopted for the otherwise-informal
// "gap = |executed_only_master| + |executed_only_slave|" formula in
// spec.md §4.E (see DESIGN.md).
func ComposeXSync(req XSyncRequest, serverExecuted, serverLost *gtid.Set, seq *seqindex.Index, masterUUID, replID string, cur, prev ModeRecord) XSyncReply {
	continueOffset, gtidCont := seq.XSync(req.GTIDSet)

	var locResult Result
	caughtUp := continueOffset < 0
	if caughtUp {
		locResult = Result{Type: Cur, Mode: cur.Mode}
	} else {
		locResult = Locate(ModeXSync, continueOffset, cur, prev)
	}

	if locResult.Type == Invalid {
		return XSyncReply{FullResync: true, Text: XFullResyncReply(serverLost, masterUUID, replID, cur.From)}
	}

	replyOffset := cur.From
	if !caughtUp {
		replyOffset = continueOffset
	}

	deltaLost := req.GTIDSet.Dup()
	deltaLost.Diff(gtidCont)

	gap := divergenceGap(serverExecuted, serverLost, req.GTIDSet, req.Lost)

	if gap > req.MaxGap {
		return XSyncReply{FullResync: true, Text: XFullResyncReply(serverLost, masterUUID, replID, cur.From)}
	}

	text := XContinueReply(gtidCont, deltaLost, masterUUID, replID, replyOffset)
	return XSyncReply{Text: text, Limit: locResult.Limit}
}

// divergenceGap computes |executed_only_master| + |executed_only_slave|
// where each side's "executed" set is its raw executed set minus its own
// lost set.
func divergenceGap(masterExecuted, masterLost, slaveExecuted, slaveLost *gtid.Set) int64 {
	masterEffective := masterExecuted.Dup()
	if masterLost != nil {
		masterEffective.Diff(masterLost)
	}
	slaveEffective := slaveExecuted.Dup()
	if slaveLost != nil {
		slaveEffective.Diff(slaveLost)
	}

	masterOnly := masterEffective.Dup()
	masterOnly.Diff(slaveEffective)
	slaveOnly := slaveEffective.Dup()
	slaveOnly.Diff(masterEffective)

	return int64(masterOnly.Stats().GNOCount) + int64(slaveOnly.Stats().GNOCount)
}

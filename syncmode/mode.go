// Package syncmode implements the replication mode record, the
// sync-request locator that classifies a peer's resume request against
// the server's current and previous replication modes, and the wire
// reply composer that turns a locate decision into a PSYNC/XSYNC reply.
package syncmode

import (
	"go.uber.org/atomic"
)

// Mode identifies which resume protocol a replication mode record or
// request uses.
type Mode int

const (
	// ModeUnset marks a mode record that has never been set (only valid
	// for the "previous" slot before the first mode shift).
	ModeUnset Mode = iota
	ModePSync
	ModeXSync
)

func (m Mode) String() string {
	switch m {
	case ModePSync:
		return "psync"
	case ModeXSync:
		return "xsync"
	default:
		return "unset"
	}
}

// PSyncDetail carries the replid bookkeeping a psync-mode record needs to
// answer legacy PSYNC requests that reference a pre-failover replid.
type PSyncDetail struct {
	ReplID             string
	ReplID2            string
	SecondReplIDOffset int64
}

// XSyncDetail carries the replid bookkeeping an xsync-mode record needs.
type XSyncDetail struct {
	ReplID           string
	GTIDReplOffDelta int64
}

// ModeRecord is one snapshot of the server's replication mode: which
// protocol is active, from which backlog offset, and that protocol's
// replid detail.
type ModeRecord struct {
	Mode   Mode
	From   int64
	PSync  PSyncDetail
	XSync  XSyncDetail
}

// modeSnapshot bundles cur and prev together so Register.Snapshot reads
// them atomically without the single mutator thread taking a lock.
type modeSnapshot struct {
	cur, prev ModeRecord
}

// Register holds the server's current and previous replication mode
// records. Mutation is single-threaded (Reset/Shift), but Snapshot may be
// called concurrently by readers (e.g. a stats command) without
// observing a partially-updated pair, via a copy-on-write atomic.Value.
type Register struct {
	v atomic.Value // holds *modeSnapshot
}

// NewRegister returns a Register with both slots unset.
func NewRegister() *Register {
	r := &Register{}
	r.v.Store(&modeSnapshot{})
	return r
}

// Snapshot returns the current and previous mode records as of some
// consistent point in time.
func (r *Register) Snapshot() (cur, prev ModeRecord) {
	s := r.v.Load().(*modeSnapshot)
	return s.cur, s.prev
}

// Reset establishes a fresh mode after an RDB load or full resync,
// clearing the previous mode to unset.
func (r *Register) Reset(mode Mode, fromOffset int64, psync PSyncDetail, xsync XSyncDetail) {
	r.v.Store(&modeSnapshot{
		cur: ModeRecord{Mode: mode, From: fromOffset, PSync: psync, XSync: xsync},
	})
}

// Shift snapshots the current mode into previous, then installs a new
// current mode starting at currentLogOffset+1. Used when switching
// between psync and xsync.
func (r *Register) Shift(newMode Mode, currentLogOffset int64, psync PSyncDetail, xsync XSyncDetail) {
	old := r.v.Load().(*modeSnapshot)
	r.v.Store(&modeSnapshot{
		prev: old.cur,
		cur:  ModeRecord{Mode: newMode, From: currentLogOffset + 1, PSync: psync, XSync: xsync},
	})
}

// Package replstate bundles the replication bookkeeping a server process
// owns: the executed and lost GTID sets, the GTID sequence index mapping
// (uuid, gno) to backlog offset, and the replication mode register. It is
// the single struct a server wires its PSYNC/XSYNC handlers against.
package replstate

import (
	"sync"

	"go.uber.org/zap"

	"github.com/redisgtid/gtidcore/gtid"
	"github.com/redisgtid/gtidcore/seqindex"
	"github.com/redisgtid/gtidcore/syncmode"
)

// State is the server's replication bookkeeping core. executed and lost
// are guarded by mu because RecordExecuted/RecordLost mutate them
// in place (gtid.Set is not safe for concurrent mutation); Modes is
// independently safe for concurrent readers via its own atomic register.
type State struct {
	mu       sync.RWMutex
	executed *gtid.Set
	lost     *gtid.Set
	seq      *seqindex.Index
	Modes    *syncmode.Register
	log      *zap.Logger
}

// New returns an empty State ready to record a fresh server's history.
func New() *State {
	return &State{
		executed: gtid.NewSet(),
		lost:     gtid.NewSet(),
		seq:      seqindex.New(),
		Modes:    syncmode.NewRegister(),
		log:      zap.NewNop(),
	}
}

// SetLogger attaches a logger for trims, lost-range surgery, and mode
// shifts. A freshly constructed State logs to a no-op logger until this
// is called, so callers that don't care about diagnostics never pay for
// it.
func (s *State) SetLogger(logger *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = logger
}

// RecordExecuted appends a newly committed (uuid, gno) at backlog offset
// and adds it to the executed set. Kept as a distinct method from
// RecordLost specifically so the two sets are never updated from a single
// shared code path: the original implementation this was grounded on
// merges both through one routine keyed by a caller-supplied flag, which
// risks the lost path accidentally reusing the executed path's logic (or
// vice versa) on a future edit. See DESIGN.md.
func (s *State) RecordExecuted(uuid string, gno gtid.GNO, offset int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed.Add(uuid, gno)
	s.seq.Append(uuid, gno, offset)
}

// RecordLost marks a (uuid, gno-range) as deliberately skipped (e.g. via
// SET GTID.LOST admin surgery), distinct from being executed.
func (s *State) RecordLost(uuid string, start, end gtid.GNO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lost.AddRange(uuid, start, end)
	s.log.Warn("gtid range marked lost",
		zap.String("uuid", uuid), zap.Int64("start", int64(start)), zap.Int64("end", int64(end)))
}

// ShiftMode records a replication mode transition on s.Modes and logs it.
// Call this instead of mutating s.Modes directly so mode shifts show up
// in the same log stream as trims and lost-range surgery.
func (s *State) ShiftMode(mode syncmode.Mode, offset int64, psync syncmode.PSyncDetail, xsync syncmode.XSyncDetail) {
	prevCur, _ := s.Modes.Snapshot()
	s.Modes.Shift(mode, offset, psync, xsync)

	s.mu.RLock()
	logger := s.log
	s.mu.RUnlock()
	logger.Info("replication mode shift",
		zap.String("from", prevCur.Mode.String()), zap.String("to", mode.String()), zap.Int64("from_offset", offset))
}

// FromSnapshot rebuilds a State from previously-captured executed/lost
// sets and sequence index, the inverse of Snapshot. Used to restore a
// debug dump or an RDB-loaded state.
func FromSnapshot(executed, lost *gtid.Set, seq *seqindex.Index, mode syncmode.Mode) *State {
	s := &State{
		executed: executed,
		lost:     lost,
		seq:      seq,
		Modes:    syncmode.NewRegister(),
		log:      zap.NewNop(),
	}
	s.Modes.Reset(mode, seq.EarliestOffset(), syncmode.PSyncDetail{}, syncmode.XSyncDetail{})
	return s
}

// Trim discards sequence-index entries mapped before cutoff, reclaiming
// their segments. It does not touch executed/lost, which track history
// independent of backlog retention.
func (s *State) Trim(cutoff int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.seq.NSegment()
	s.seq.Trim(cutoff)
	s.log.Debug("sequence index trimmed",
		zap.Int64("cutoff", cutoff), zap.Int("segments_before", before), zap.Int("segments_after", s.seq.NSegment()))
}

// Snapshot is the bookkeeping state needed to answer a single sync
// request: independently-owned copies of the GTID sets and mode records,
// plus the live sequence index shared with the State.
type Snapshot struct {
	Executed *gtid.Set
	Lost     *gtid.Set
	Seq      *seqindex.Index
	Cur      syncmode.ModeRecord
	Prev     syncmode.ModeRecord
}

// Snapshot returns point-in-time copies of the executed and lost sets
// (duplicated since gtid.Set's Diff/Merge mutate their receiver in place)
// and of the mode records. The sequence index is returned by reference,
// not copied: it reflects later RecordExecuted/Trim calls, and reading it
// while another goroutine calls them is not synchronized.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, prev := s.Modes.Snapshot()
	return Snapshot{
		Executed: s.executed.Dup(),
		Lost:     s.lost.Dup(),
		Seq:      s.seq,
		Cur:      cur,
		Prev:     prev,
	}
}

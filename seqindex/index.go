package seqindex

import "github.com/redisgtid/gtidcore/gtid"

// Index is a doubly linked list of segments ordered by append time (which
// is also log-offset order), plus a short free list of reusable segments.
type Index struct {
	first, last *segment
	free        *segment
	nFreeSeg    int
	nSegment    int
}

// New returns an empty sequence index.
func New() *Index {
	return &Index{}
}

func (idx *Index) allocSegment() *segment {
	if idx.free != nil {
		s := idx.free
		idx.free = s.freeNext
		idx.nFreeSeg--
		return s
	}
	return &segment{}
}

func (idx *Index) releaseSegment(s *segment) {
	if idx.nFreeSeg >= maxFreeSegments {
		return
	}
	s.freeNext = idx.free
	idx.free = s
	idx.nFreeSeg++
}

// Append records that uuid's gno was written at offset. offset must be
// strictly greater than every previously appended offset (the backlog is
// append-only); gno must be uuid's previous gno + 1 or the start of a new
// producer.
func (idx *Index) Append(uuid string, gno gtid.GNO, offset int64) {
	if idx.last != nil && idx.last.extends(uuid, gno) {
		s := idx.last
		s.deltas[s.ngno] = offset - s.baseOffset
		s.ngno++
		return
	}

	s := idx.allocSegment()
	s.reset(uuid, gno, offset)

	if idx.last == nil {
		idx.first = s
		idx.last = s
	} else {
		s.prev = idx.last
		idx.last.next = s
		idx.last = s
	}
	idx.nSegment++
}

// Trim drops every recorded entry whose mapped offset is < cutoff,
// reclaiming whole segments onto the free list and advancing the
// boundary segment's trim counter.
func (idx *Index) Trim(cutoff int64) {
	for idx.first != nil && idx.first.lastOffset() < cutoff {
		dead := idx.first
		idx.first = dead.next
		if idx.first != nil {
			idx.first.prev = nil
		} else {
			idx.last = nil
		}
		idx.nSegment--
		idx.releaseSegment(dead)
	}
	if idx.first == nil {
		return
	}
	s := idx.first
	for s.tgno < s.ngno && s.baseOffset+s.deltas[s.tgno] < cutoff {
		s.tgno++
	}
}

// NSegment returns the number of live segments.
func (idx *Index) NSegment() int {
	return idx.nSegment
}

// EarliestOffset returns the offset of the oldest live entry, or -1 if
// the index is empty.
func (idx *Index) EarliestOffset() int64 {
	if idx.first == nil {
		return -1
	}
	return idx.first.firstLiveOffset()
}

// PSync returns the set of (uuid, gno) whose mapped offset is >= offset.
// It is used to translate a byte-offset continue point into a GTID
// continue point when switching replication modes.
func (idx *Index) PSync(offset int64) *gtid.Set {
	out := gtid.NewSet()
	for s := idx.first; s != nil; s = s.next {
		for i := s.tgno; i < s.ngno; i++ {
			if s.baseOffset+s.deltas[i] >= offset {
				out.Add(s.uuid, s.baseGno+gtid.GNO(i))
			}
		}
	}
	return out
}

// Entry is one live (uuid, gno) -> offset mapping, as returned by Entries.
type Entry struct {
	UUID   string
	Gno    gtid.GNO
	Offset int64
}

// Entries returns every live mapping in append order. Intended for
// snapshotting (GTIDX SEQ DUMP), not the hot path.
func (idx *Index) Entries() []Entry {
	var out []Entry
	for s := idx.first; s != nil; s = s.next {
		for i := s.tgno; i < s.ngno; i++ {
			out = append(out, Entry{UUID: s.uuid, Gno: s.baseGno + gtid.GNO(i), Offset: s.baseOffset + s.deltas[i]})
		}
	}
	return out
}

// LoadEntries rebuilds an index from a flat entry list previously produced
// by Entries, by replaying each mapping through Append into a new, empty
// index.
func LoadEntries(entries []Entry) *Index {
	idx := New()
	for _, e := range entries {
		idx.Append(e.UUID, e.Gno, e.Offset)
	}
	return idx
}

// XSync answers "given a peer's GTID-set, what log offset do we hand it
// to resume streaming, and what GTIDs is it missing?"
//
// When peer is non-empty, only uuids peer already mentions are
// considered "of interest" to it: uuids the index tracks but peer never
// mentions are assumed out of peer's subscription scope and are not
// reported missing. A wholly empty peer set is the one exception — it
// signals a peer with no state at all, so every uuid the index tracks is
// in scope.
//
// continueOffset is the log offset of the earliest entry missing from
// peer; it is -1 if peer already has everything in scope. continueSet is
// the union of every gno in scope that peer is missing.
//
// Segments are walked newest to oldest (idx.last back to idx.first): the
// uuid most recently active is the one most likely to matter to a
// reconnecting peer, and continueSet's insertion order (which fixes its
// encoded uuid order) should reflect that recency rather than the order
// uuids first appeared in the log. continueOffset doesn't depend on this
// direction — it's tracked as a running minimum over every missing
// entry, not just the first one visited.
func (idx *Index) XSync(peer *gtid.Set) (continueOffset int64, continueSet *gtid.Set) {
	continueSet = gtid.NewSet()
	continueOffset = -1

	restrictToPeerUUIDs := len(peer.UUIDSets()) > 0

	for s := idx.last; s != nil; s = s.prev {
		peerUUIDSet := peer.Find(s.uuid)
		if restrictToPeerUUIDs && peerUUIDSet == nil {
			continue
		}
		for i := s.tgno; i < s.ngno; i++ {
			gno := s.baseGno + gtid.GNO(i)
			if peerUUIDSet != nil && peerUUIDSet.Contains(gno) {
				continue
			}
			offset := s.baseOffset + s.deltas[i]
			if continueOffset < 0 || offset < continueOffset {
				continueOffset = offset
			}
			continueSet.Add(s.uuid, gno)
		}
	}

	return continueOffset, continueSet
}

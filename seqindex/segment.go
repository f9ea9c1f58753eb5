// Package seqindex implements the GTID sequence index: an append-only,
// segmented map from (uuid, gno) pairs to the replication backlog offset
// they were written at, used to answer "where does this peer resume?".
package seqindex

import "github.com/redisgtid/gtidcore/gtid"

// segmentCapacity bounds how many (gno, offset) pairs a single segment
// holds before a new one must be started. Kept well above typical
// transaction burst sizes so append stays amortized O(1).
const segmentCapacity = 1024

// maxFreeSegments caps how many emptied segments are kept on the free
// list for reuse, bounding idle memory after a large trim.
const maxFreeSegments = 4

// segment records a contiguous run of GNOs for one uuid: gnos
// [baseGno+tgno, baseGno+ngno-1], each mapped to baseOffset+deltas[i].
type segment struct {
	uuid       string
	baseGno    gtid.GNO
	baseOffset int64
	tgno       int
	ngno       int
	deltas     [segmentCapacity]int64

	prev, next *segment
	freeNext   *segment
}

func (s *segment) reset(uuid string, gno gtid.GNO, offset int64) {
	s.uuid = uuid
	s.baseGno = gno
	s.baseOffset = offset
	s.tgno = 0
	s.ngno = 1
	s.deltas[0] = 0
	s.prev, s.next, s.freeNext = nil, nil, nil
}

// lastOffset returns the offset mapped by the segment's newest entry.
func (s *segment) lastOffset() int64 {
	return s.baseOffset + s.deltas[s.ngno-1]
}

// firstLiveOffset returns the offset mapped by the segment's oldest
// untrimmed entry.
func (s *segment) firstLiveOffset() int64 {
	return s.baseOffset + s.deltas[s.tgno]
}

// full reports whether the segment has no room for another delta.
func (s *segment) full() bool {
	return s.ngno >= segmentCapacity
}

// extends reports whether (uuid, gno) is the immediate successor of this
// segment's last recorded gno, making it eligible for in-place append.
func (s *segment) extends(uuid string, gno gtid.GNO) bool {
	return s.uuid == uuid && gno == s.baseGno+gtid.GNO(s.ngno) && !s.full()
}

package seqindex

import "github.com/redisgtid/gtidcore/gtid"

// Bounds is a read-only summary of one live segment, exposed so a caller
// can binary search across the index without reaching into its internal
// linked-list layout.
type Bounds struct {
	UUID        string
	BaseGno     gtid.GNO
	TrimmedGno  int
	LiveGno     int
	FirstOffset int64
	LastOffset  int64
}

// Bounds returns every live segment's bounds in append order. Intended
// for diagnostics (GTIDX SEQ LOCATE) rather than the hot append/trim
// path, which walks the linked list directly.
func (idx *Index) Bounds() []Bounds {
	out := make([]Bounds, 0, idx.nSegment)
	for s := idx.first; s != nil; s = s.next {
		out = append(out, Bounds{
			UUID:        s.uuid,
			BaseGno:     s.baseGno,
			TrimmedGno:  s.tgno,
			LiveGno:     s.ngno,
			FirstOffset: s.firstLiveOffset(),
			LastOffset:  s.lastOffset(),
		})
	}
	return out
}

// LocateOffset binary searches a Bounds slice (as returned by Bounds, which
// is ordered by ascending offset since segments are appended in backlog
// order) for the first segment whose LastOffset is >= offset. It reports
// false if every segment ends before offset.
//
// The loop is the "first index where f is true" binary search over a
// monotonic predicate, the same shape as sort.Search.
func LocateOffset(bounds []Bounds, offset int64) (int, bool) {
	i, j := 0, len(bounds)
	for i < j {
		h := int(uint(i+j) >> 1)
		if bounds[h].LastOffset < offset {
			i = h + 1
		} else {
			j = h
		}
	}
	if i == len(bounds) {
		return 0, false
	}
	return i, true
}

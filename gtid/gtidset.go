package gtid

import (
	"strings"

	"go.uber.org/multierr"
)

// Set is an ordered collection of UUID-sets keyed by uuid. Each uuid
// appears at most once; insertion order is preserved and is observable
// via Encode/String.
type Set struct {
	order []*UUIDSet
	index map[string]int
}

// NewSet returns an empty GTID-set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Find returns the UUID-set for uuid, or nil if absent.
func (s *Set) Find(uuid string) *UUIDSet {
	if i, ok := s.index[uuid]; ok {
		return s.order[i]
	}
	return nil
}

// Append adds uuidSet to the collection and returns its GNO count. If a
// UUID-set with the same uuid is already present, uuidSet is not added
// and Append returns 0.
func (s *Set) Append(uuidSet *UUIDSet) GNO {
	if _, ok := s.index[uuidSet.UUID()]; ok {
		return 0
	}
	s.index[uuidSet.UUID()] = len(s.order)
	s.order = append(s.order, uuidSet)
	return uuidSet.Count()
}

func (s *Set) findOrCreate(uuid string) *UUIDSet {
	if u := s.Find(uuid); u != nil {
		return u
	}
	u := NewUUIDSet(uuid)
	s.Append(u)
	return u
}

// Add covers gno for uuid, creating the UUID-set if needed.
func (s *Set) Add(uuid string, gno GNO) GNO {
	return s.findOrCreate(uuid).Add(gno, gno)
}

// AddRange covers [start, end] for uuid, creating the UUID-set if needed.
func (s *Set) AddRange(uuid string, start, end GNO) GNO {
	return s.findOrCreate(uuid).Add(start, end)
}

// Raise covers [1, watermark] for uuid, creating the UUID-set if needed.
// A watermark below GNOInitial is a no-op.
func (s *Set) Raise(uuid string, watermark GNO) GNO {
	if watermark < GNOInitial {
		return 0
	}
	return s.findOrCreate(uuid).Add(GNOInitial, watermark)
}

// Remove uncovers [start, end] for uuid. Absent uuids are a no-op.
func (s *Set) Remove(uuid string, start, end GNO) GNO {
	u := s.Find(uuid)
	if u == nil {
		return 0
	}
	return u.Remove(start, end)
}

// Contains reports whether gno is covered for uuid.
func (s *Set) Contains(uuid string, gno GNO) bool {
	u := s.Find(uuid)
	return u != nil && u.Contains(gno)
}

// UUIDSets returns the UUID-sets in insertion order. Callers must not
// mutate the returned slice.
func (s *Set) UUIDSets() []*UUIDSet {
	return s.order
}

// Merge folds src into dst: matching UUID-sets have their intervals
// merged, absent ones are appended. src must not be reused afterwards.
func (dst *Set) Merge(src *Set) GNO {
	var added GNO
	for _, cur := range src.order {
		if existing := dst.Find(cur.UUID()); existing != nil {
			added += existing.Merge(cur)
		} else {
			added += dst.Append(cur)
		}
	}
	return added
}

// Diff removes, from dst, every GNO that src covers for a matching uuid.
// UUID-sets present only in src are ignored.
func (dst *Set) Diff(src *Set) GNO {
	var removed GNO
	for _, cur := range src.order {
		existing := dst.Find(cur.UUID())
		if existing == nil {
			continue
		}
		for _, iv := range cur.Intervals() {
			removed += existing.Remove(iv.Start, iv.End)
		}
	}
	return removed
}

// Related reports whether a and b share at least one uuid.
func Related(a, b *Set) bool {
	for _, cur := range a.order {
		if b.Find(cur.UUID()) != nil {
			return true
		}
	}
	return false
}

// Equal reports whether a and b cover exactly the same GNOs per uuid.
func Equal(a, b *Set) bool {
	if len(a.order) != len(b.order) {
		return false
	}
	for _, cur := range a.order {
		other := b.Find(cur.UUID())
		if other == nil {
			return false
		}
		if !intervalsEqual(cur.Intervals(), other.Intervals()) {
			return false
		}
	}
	return true
}

func intervalsEqual(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Dup returns a structural copy of s.
func (s *Set) Dup() *Set {
	out := NewSet()
	for _, cur := range s.order {
		out.Append(cur.Dup())
	}
	return out
}

// EstimateEncodeSize returns a conservative upper bound on the number of
// bytes Encode/String will need.
func (s *Set) EstimateEncodeSize() int {
	size := 1
	for _, cur := range s.order {
		size += cur.EstimateEncodeSize() + 1
	}
	return size
}

// String returns the canonical comma-joined text encoding of s. An empty
// set encodes to the empty string.
func (s *Set) String() string {
	var sb strings.Builder
	sb.Grow(s.EstimateEncodeSize())
	for i, cur := range s.order {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(cur.String())
	}
	return sb.String()
}

// Encode writes the canonical comma-joined text encoding of s to buf.
func (s *Set) Encode(buf []byte, maxlen int) (int, error) {
	str := s.String()
	if len(str) > maxlen {
		return -1, ErrBufTooSmall
	}
	return copy(buf, str), nil
}

// DecodeSet parses a comma-joined list of uuid-sets. The empty string
// decodes to an empty set. Every fragment is parsed; the parse errors of
// all malformed uuid-sets are aggregated via multierr, and if there is any
// error no set is returned, so no partial state leaks to the caller.
func DecodeSet(repr string) (set *Set, err error) {
	set = NewSet()
	if repr == "" {
		return set, nil
	}
	var errs error
	for _, frag := range strings.Split(repr, ",") {
		u, derr := DecodeUUIDSet(frag)
		if derr != nil {
			errs = multierr.Append(errs, derr)
			continue
		}
		set.Append(u)
	}
	if errs != nil {
		return nil, errs
	}
	return set, nil
}

// Stat summarizes the size of a GTID-set for management/reporting
// commands (GTIDX STAT).
type Stat struct {
	UUIDCount   int
	GapCount    int // total number of disjoint intervals across all uuids
	GNOCount    GNO
	UsedMemory  uint64
}

// nodeWithOneForwardSize approximates sizeof(a skip-list node carrying a
// single forward pointer), used to derive UsedMemory from node counts the
// same way the reference implementation approximates heap usage.
const nodeWithOneForwardSize = 40

// Stats reports the aggregate shape of s.
func (s *Set) Stats() Stat {
	var st Stat
	st.UUIDCount = len(s.order)
	for _, cur := range s.order {
		ivs := cur.Intervals()
		st.GapCount += len(ivs)
		st.GNOCount += cur.Count()
		st.UsedMemory += uint64(len(ivs)) * nodeWithOneForwardSize
	}
	return st
}

package gtid

import (
	"fmt"
	"strings"
)

// MaxUUIDLen bounds the length of the opaque byte label identifying a
// producer. UUIDs carry no cryptographic meaning; they are compared only
// for equality.
const MaxUUIDLen = 40

// intervalNodeEncodeWidth is a conservative upper bound on the encoded
// width of a single interval: ":" + 21 digits + "-" + 21 digits.
const intervalNodeEncodeWidth = 44

// UUIDSet is the set of GNOs known for one producer UUID, stored as
// coalesced closed intervals.
type UUIDSet struct {
	uuid      string
	intervals *intervalSkipList
}

// NewUUIDSet returns an empty UUID-set for uuid.
func NewUUIDSet(uuid string) *UUIDSet {
	return &UUIDSet{uuid: uuid, intervals: newIntervalSkipList()}
}

// UUID returns the set's immutable producer label.
func (u *UUIDSet) UUID() string { return u.uuid }

// Add covers [start, end] and returns the number of newly-covered GNOs.
func (u *UUIDSet) Add(start, end GNO) GNO {
	return u.intervals.add(start, end)
}

// Remove uncovers [start, end] and returns the number of GNOs removed.
func (u *UUIDSet) Remove(start, end GNO) GNO {
	return u.intervals.remove(start, end)
}

// Contains reports whether gno is covered.
func (u *UUIDSet) Contains(gno GNO) bool {
	return u.intervals.contains(gno)
}

// Next returns the smallest GNO not present that is >= the current
// maximum+1, or GNOInitial if the set is empty. When update is true the
// GNO is also added to the set.
func (u *UUIDSet) Next(update bool) GNO {
	return u.intervals.next(update)
}

// Advance extends the tail interval by one and returns the new GNO,
// allocating GNOInitial if the set is empty.
func (u *UUIDSet) Advance() GNO {
	return u.intervals.advance()
}

// Raise adds [1, watermark] to the set; a watermark below GNOInitial is a
// no-op.
func (u *UUIDSet) Raise(watermark GNO) GNO {
	if watermark < GNOInitial {
		return 0
	}
	return u.intervals.add(GNOInitial, watermark)
}

// Merge folds other's intervals into u and returns the number of newly
// covered GNOs. Merge is a no-op (returns 0) if the UUIDs differ. other
// must not be reused afterwards.
func (u *UUIDSet) Merge(other *UUIDSet) GNO {
	if u.uuid != other.uuid {
		return 0
	}
	return u.intervals.merge(other.intervals)
}

// Dup returns a structural copy of u.
func (u *UUIDSet) Dup() *UUIDSet {
	return &UUIDSet{uuid: u.uuid, intervals: u.intervals.dup()}
}

// Count returns the total number of GNOs covered.
func (u *UUIDSet) Count() GNO {
	return u.intervals.gnoCount
}

// Intervals returns the covered ranges in ascending order.
func (u *UUIDSet) Intervals() []Interval {
	return u.intervals.intervals()
}

// EstimateEncodeSize returns a conservative upper bound on the number of
// bytes Encode will need.
func (u *UUIDSet) EstimateEncodeSize() int {
	return len(u.uuid) + u.intervals.nodeCount*intervalNodeEncodeWidth
}

// Encode writes "<uuid>(:<interval>)*" to buf and returns the number of
// bytes written, or ErrBufTooSmall if buf cannot hold the result.
func (u *UUIDSet) Encode(buf []byte, maxlen int) (int, error) {
	s := u.String()
	if len(s) > maxlen {
		return -1, ErrBufTooSmall
	}
	return copy(buf, s), nil
}

// String returns the canonical text encoding of u.
func (u *UUIDSet) String() string {
	var sb strings.Builder
	sb.Grow(u.EstimateEncodeSize())
	sb.WriteString(u.uuid)
	u.intervals.iterate(func(s, e GNO) bool {
		sb.WriteByte(':')
		encodeInterval(&sb, s, e)
		return true
	})
	return sb.String()
}

// DecodeUUIDSet parses a single "<uuid>(:<interval>)*" or bare "<uuid>"
// representation. A trailing colon with no following interval is a parse
// error; a bare uuid with no intervals decodes to an empty set.
func DecodeUUIDSet(repr string) (*UUIDSet, error) {
	if repr == "" {
		return nil, fmt.Errorf("%w: empty uuid-set", ErrParse)
	}
	if repr[len(repr)-1] == ':' {
		return nil, fmt.Errorf("%w: trailing ':' in %q", ErrParse, repr)
	}

	parts := strings.Split(repr, ":")
	uuid := parts[0]
	if uuid == "" {
		return nil, fmt.Errorf("%w: empty uuid in %q", ErrParse, repr)
	}
	if len(uuid) > MaxUUIDLen {
		return nil, fmt.Errorf("%w: uuid too long in %q", ErrParse, repr)
	}

	set := NewUUIDSet(uuid)
	for _, frag := range parts[1:] {
		start, end, err := decodeInterval(frag)
		if err != nil {
			return nil, err
		}
		set.Add(start, end)
	}
	return set, nil
}

// Package parser decodes the PSYNC/XSYNC request line and the GTID-related
// RDB auxiliary fields off the wire, mirroring the teacher's line-oriented
// parsing style.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/redisgtid/gtidcore/gtid"
)

// ErrMalformedRequest is returned for any request line that cannot be
// split into the expected tokens.
var ErrMalformedRequest = fmt.Errorf("parser: malformed request line")

// PSyncRequest is a decoded "PSYNC <replid> <offset>" request.
type PSyncRequest struct {
	ReplID string
	Offset int64
}

// ParsePSync parses a PSYNC request line. A replid of "?" or offset of -1
// signals a fresh replica with no prior state, matching the wire
// convention of "PSYNC ? -1".
func ParsePSync(line string) (PSyncRequest, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || !strings.EqualFold(fields[0], "PSYNC") {
		return PSyncRequest{}, fmt.Errorf("%w: %q", ErrMalformedRequest, line)
	}
	offset, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return PSyncRequest{}, fmt.Errorf("parser: invalid psync offset %q: %w", fields[2], err)
	}
	return PSyncRequest{ReplID: fields[1], Offset: offset}, nil
}

// XSyncRequest is a decoded "XSYNC <uuid_interested|*|?> <gtid_set>
// [GTID.LOST <set>] [MAXGAP <n>]" request line. UUIDInterested and
// GTIDSet are positional, matching the wire send in the original
// server ("XSYNC", uuid_interested, gtid_slave_repr, "GTID.LOST", ...).
type XSyncRequest struct {
	UUIDInterested string
	GTIDSet        *gtid.Set
	Lost           *gtid.Set
	MaxGap         int64
}

// ParseXSync parses an XSYNC request line. GTID.LOST is optional; MAXGAP
// defaults to 0 (no divergence tolerated) if omitted. Unrecognized
// trailing options are skipped rather than rejected, per the wire
// protocol's forward-compatibility rule.
func ParseXSync(line string) (XSyncRequest, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || !strings.EqualFold(fields[0], "XSYNC") {
		return XSyncRequest{}, fmt.Errorf("%w: %q", ErrMalformedRequest, line)
	}

	set, err := gtid.DecodeSet(fields[2])
	if err != nil {
		return XSyncRequest{}, fmt.Errorf("parser: invalid gtid_set %q: %w", fields[2], err)
	}
	req := XSyncRequest{UUIDInterested: fields[1], GTIDSet: set, Lost: gtid.NewSet()}

	i := 3
	for i < len(fields) {
		switch strings.ToUpper(fields[i]) {
		case "GTID.LOST":
			if i+1 >= len(fields) {
				return XSyncRequest{}, fmt.Errorf("%w: GTID.LOST missing value", ErrMalformedRequest)
			}
			lost, err := gtid.DecodeSet(fields[i+1])
			if err != nil {
				return XSyncRequest{}, fmt.Errorf("parser: invalid GTID.LOST: %w", err)
			}
			req.Lost = lost
			i += 2
		case "MAXGAP":
			if i+1 >= len(fields) {
				return XSyncRequest{}, fmt.Errorf("%w: MAXGAP missing value", ErrMalformedRequest)
			}
			gap, err := strconv.ParseInt(fields[i+1], 10, 64)
			if err != nil {
				return XSyncRequest{}, fmt.Errorf("parser: invalid MAXGAP %q: %w", fields[i+1], err)
			}
			req.MaxGap = gap
			i += 2
		default:
			// Forward-compatibility: an option this version doesn't know
			// about is skipped (keyword + its value), not rejected.
			if i+1 < len(fields) {
				i += 2
			} else {
				i++
			}
		}
	}

	return req, nil
}

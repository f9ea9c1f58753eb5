package parser

import (
	"fmt"
	"strings"

	"github.com/redisgtid/gtidcore/gtid"
	"github.com/redisgtid/gtidcore/syncmode"
)

// rdbAuxOrder is the fixed field order the RDB writer emits GTID aux
// fields in and the reader requires them in: mode before the sets it
// describes, executed before lost. An RDB produced with a different
// order is rejected rather than tolerated, since a loader that silently
// reordered could mask a writer bug.
var rdbAuxOrder = []string{"gtid-repl-mode", "gtid-executed", "gtid-lost"}

// RDBAux is the decoded set of GTID-related RDB auxiliary fields.
type RDBAux struct {
	Mode     syncmode.Mode
	Executed *gtid.Set
	Lost     *gtid.Set
}

// EncodeRDBAux renders the GTID aux fields in their required order as
// "key value" lines, the way an RDB writer appends aux fields ahead of
// the keyspace.
func EncodeRDBAux(mode syncmode.Mode, executed, lost *gtid.Set) []string {
	return []string{
		fmt.Sprintf("%s %s", rdbAuxOrder[0], modeAuxValue(mode)),
		fmt.Sprintf("%s %s", rdbAuxOrder[1], executed.String()),
		fmt.Sprintf("%s %s", rdbAuxOrder[2], lost.String()),
	}
}

func modeAuxValue(mode syncmode.Mode) string {
	switch mode {
	case syncmode.ModePSync:
		return "psync"
	case syncmode.ModeXSync:
		return "xsync"
	default:
		return "unset"
	}
}

// DecodeRDBAux parses the three GTID aux lines back into an RDBAux,
// rejecting any that arrive out of rdbAuxOrder or with an unknown key.
func DecodeRDBAux(lines []string) (RDBAux, error) {
	if len(lines) != len(rdbAuxOrder) {
		return RDBAux{}, fmt.Errorf("parser: expected %d GTID aux fields, got %d", len(rdbAuxOrder), len(lines))
	}

	var aux RDBAux
	for i, line := range lines {
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return RDBAux{}, fmt.Errorf("parser: malformed aux line %q", line)
		}
		if key != rdbAuxOrder[i] {
			return RDBAux{}, fmt.Errorf("parser: expected aux field %q at position %d, got %q", rdbAuxOrder[i], i, key)
		}

		switch key {
		case "gtid-repl-mode":
			mode, err := parseModeAuxValue(value)
			if err != nil {
				return RDBAux{}, err
			}
			aux.Mode = mode
		case "gtid-executed":
			set, err := gtid.DecodeSet(value)
			if err != nil {
				return RDBAux{}, fmt.Errorf("parser: invalid gtid-executed: %w", err)
			}
			aux.Executed = set
		case "gtid-lost":
			set, err := gtid.DecodeSet(value)
			if err != nil {
				return RDBAux{}, fmt.Errorf("parser: invalid gtid-lost: %w", err)
			}
			aux.Lost = set
		}
	}
	return aux, nil
}

func parseModeAuxValue(value string) (syncmode.Mode, error) {
	switch value {
	case "psync":
		return syncmode.ModePSync, nil
	case "xsync":
		return syncmode.ModeXSync, nil
	case "unset":
		return syncmode.ModeUnset, nil
	default:
		return syncmode.ModeUnset, fmt.Errorf("parser: unknown gtid-repl-mode %q", value)
	}
}

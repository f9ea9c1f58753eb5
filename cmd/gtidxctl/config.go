package main

import (
	"flag"
	"fmt"

	"github.com/redisgtid/gtidcore/models"
)

func parseFlags() *models.Config {
	cfg := &models.Config{}

	var formatStr string

	flag.StringVar(&cfg.Command, "cmd", "list", "Command: list, stat, add, remove, seq-locate, seq-dump, seq-load, trim")
	flag.StringVar(&cfg.UUID, "uuid", "", "Producer UUID (add/remove)")
	flag.Int64Var(&cfg.Start, "start", 0, "Range start gno (add/remove)")
	flag.Int64Var(&cfg.End, "end", 0, "Range end gno (add/remove)")
	flag.Int64Var(&cfg.Offset, "offset", 0, "Backlog offset (seq-locate)")
	flag.StringVar(&cfg.PeerSetRepr, "peer-set", "", "Peer GTID set text form (seq-locate xsync mode)")
	flag.StringVar(&cfg.SnapshotFile, "snapshot", "gtidxctl.snapshot", "Snapshot file path (seq-dump/seq-load)")
	flag.StringVar(&formatStr, "format", "console", "Output format: console, csv, json")
	flag.StringVar(&cfg.OutputFile, "output", "", "Output file (default: stdout)")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Rotated log file path (default: stderr only)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")

	flag.Parse()

	cfg.OutputFormat = models.ExportFormat(formatStr)
	return cfg
}

func validateConfig(cfg *models.Config) error {
	switch cfg.Command {
	case "list", "stat", "seq-dump", "seq-load":
	case "add", "remove":
		if cfg.UUID == "" {
			return fmt.Errorf("-uuid is required for %s", cfg.Command)
		}
		if cfg.Start == 0 || cfg.End == 0 {
			return fmt.Errorf("-start and -end are required for %s", cfg.Command)
		}
		if cfg.Start > cfg.End {
			return fmt.Errorf("-start must be <= -end")
		}
	case "seq-locate":
		if cfg.Offset == 0 && cfg.PeerSetRepr == "" {
			return fmt.Errorf("seq-locate requires -offset (psync) or -peer-set (xsync)")
		}
	case "trim":
		if cfg.Offset == 0 {
			return fmt.Errorf("-offset (cutoff) is required for trim")
		}
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}

	if !cfg.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output format: %s (must be console, csv, or json)", cfg.OutputFormat)
	}
	return nil
}

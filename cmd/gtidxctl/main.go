// Command gtidxctl is a management CLI over an in-memory replication
// bookkeeping core: it seeds a demo gtid.Set/sequence index backed by a
// real backlog.Ring, then lets the operator inspect and mutate it with
// LIST/STAT/ADD/REMOVE/SEQ-LOCATE/TRIM commands, or round-trip it through
// a compressed debug snapshot.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redisgtid/gtidcore/backlog"
	"github.com/redisgtid/gtidcore/exporter"
	"github.com/redisgtid/gtidcore/gtid"
	"github.com/redisgtid/gtidcore/models"
	"github.com/redisgtid/gtidcore/replstate"
	"github.com/redisgtid/gtidcore/seqindex"
)

// demo bundles the replication state with the backlog ring that fed it,
// so commands that need to trim both in lockstep (spec's coupled
// backlog/index-trim invariant) have the ring at hand.
type demo struct {
	state   *replstate.State
	backlog *backlog.Ring
}

func main() {
	cfg := parseFlags()

	if err := validateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	d, err := loadOrSeedState(cfg, logger)
	if err != nil {
		logger.Error("failed to load state", zap.Error(err))
		os.Exit(1)
	}

	if err := dispatch(cfg, d, logger); err != nil {
		logger.Error("command failed", zap.String("cmd", cfg.Command), zap.Error(err))
		os.Exit(1)
	}
}

// loadOrSeedState returns a fresh seeded demo state, except for seq-load
// which instead restores a previously-dumped snapshot. seq-load has no
// backlog bytes to restore (the snapshot only carries the index, not the
// replication stream), so it gets a fresh empty ring.
func loadOrSeedState(cfg *models.Config, logger *zap.Logger) (*demo, error) {
	var d *demo
	var err error
	if cfg.Command == "seq-load" {
		logger.Info("loading snapshot", zap.String("path", cfg.SnapshotFile))
		var state *replstate.State
		state, err = loadSnapshot(cfg.SnapshotFile)
		if state != nil {
			d = &demo{state: state, backlog: backlog.NewRing()}
		}
	} else {
		d = seedDemoState()
	}
	if d != nil {
		d.state.SetLogger(logger)
	}
	return d, err
}

// seedDemoState builds a small two-producer history so LIST/STAT/SEQ-LOCATE
// have something to show on a fresh run. Each recorded GTID is backed by an
// actual append to a backlog.Ring, so the offset handed to RecordExecuted
// is a real backlog offset rather than a bare counter.
func seedDemoState() *demo {
	state := replstate.New()
	ring := backlog.NewRing()

	producers := []string{
		uuid.NewString(),
		uuid.NewString(),
	}

	for round := gtid.GNO(1); round <= 20; round++ {
		for _, u := range producers {
			payload := fmt.Sprintf("%s:%d", u, round)
			offset, _ := ring.Append([]byte(payload))
			state.RecordExecuted(u, round, offset)
		}
	}
	return &demo{state: state, backlog: ring}
}

func dispatch(cfg *models.Config, d *demo, logger *zap.Logger) error {
	state := d.state
	switch cfg.Command {
	case "list":
		return runList(cfg, state)
	case "stat":
		return runStat(cfg, state)
	case "add":
		for g := cfg.Start; g <= cfg.End; g++ {
			offset, _ := d.backlog.Append([]byte(fmt.Sprintf("%s:%d", cfg.UUID, g)))
			state.RecordExecuted(cfg.UUID, gtid.GNO(g), offset)
		}
		logger.Info("added range", zap.String("uuid", cfg.UUID), zap.Int64("start", cfg.Start), zap.Int64("end", cfg.End))
		return runList(cfg, state)
	case "remove":
		state.RecordLost(cfg.UUID, gtid.GNO(cfg.Start), gtid.GNO(cfg.End))
		logger.Info("marked lost", zap.String("uuid", cfg.UUID), zap.Int64("start", cfg.Start), zap.Int64("end", cfg.End))
		return runList(cfg, state)
	case "seq-locate":
		return runSeqLocate(cfg, state)
	case "seq-dump":
		if err := dumpSnapshot(cfg.SnapshotFile, state); err != nil {
			return err
		}
		logger.Info("snapshot written", zap.String("path", cfg.SnapshotFile))
		return nil
	case "seq-load":
		logger.Info("snapshot loaded", zap.Int("segments", state.Snapshot().Seq.NSegment()))
		return runList(cfg, state)
	case "trim":
		return runTrim(cfg, d, logger)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

// runTrim exercises the invariant that the backlog and the sequence index
// must be trimmed together: trimming one without the other leaves either
// dangling offsets (index outlives backlog bytes) or untrimmed memory
// (backlog outlives index entries). It trims both at the same cutoff and
// reports before/after bounds for each.
func runTrim(cfg *models.Config, d *demo, logger *zap.Logger) error {
	beforeBacklogFirst := d.backlog.FirstOffset()
	beforeSeg := d.state.Snapshot().Seq.NSegment()

	d.backlog.Trim(cfg.Offset)
	d.state.Trim(cfg.Offset)

	snap := d.state.Snapshot()
	logger.Info("trimmed backlog and sequence index together",
		zap.Int64("cutoff", cfg.Offset),
		zap.Int64("backlog_first_offset_before", beforeBacklogFirst),
		zap.Int64("backlog_first_offset_after", d.backlog.FirstOffset()),
		zap.Int("seq_segments_before", beforeSeg),
		zap.Int("seq_segments_after", snap.Seq.NSegment()))

	fmt.Printf("backlog: first_offset=%d head_offset=%d\n", d.backlog.FirstOffset(), d.backlog.HeadOffset())
	fmt.Printf("seq index: segments=%d earliest_offset=%d\n", snap.Seq.NSegment(), snap.Seq.EarliestOffset())
	return nil
}

func runList(cfg *models.Config, state *replstate.State) error {
	snap := state.Snapshot()

	views := make([]*models.UUIDSetView, 0, len(snap.Executed.UUIDSets()))
	for _, us := range snap.Executed.UUIDSets() {
		intervals := us.Intervals()
		gapCount := 0
		intervalsText := ""
		if len(intervals) > 0 {
			gapCount = len(intervals) - 1
			intervalsText = strings.TrimPrefix(us.String(), us.UUID()+":")
		}
		views = append(views, &models.UUIDSetView{
			UUID:      us.UUID(),
			Intervals: intervalsText,
			GapCount:  gapCount,
			GNOCount:  int64(us.Count()),
		})
	}

	return renderViews(cfg, views)
}

func renderViews(cfg *models.Config, views []*models.UUIDSetView) error {
	switch cfg.OutputFormat {
	case models.FormatCSV:
		return exporter.NewCSVExporter().Export(views, cfg.OutputFile)
	case models.FormatJSON:
		return exporter.NewJSONExporter(true).Export(views, cfg.OutputFile)
	default:
		return exporter.NewConsoleExporter().Export(views, cfg.OutputFile)
	}
}

func runStat(cfg *models.Config, state *replstate.State) error {
	snap := state.Snapshot()
	gstat := snap.Executed.Stats()

	view := &models.IndexStatView{
		UUIDCount:      gstat.UUIDCount,
		GapCount:       gstat.GapCount,
		GNOCount:       int64(gstat.GNOCount),
		UsedMemory:     gstat.UsedMemory,
		NSegment:       snap.Seq.NSegment(),
		EarliestOffset: snap.Seq.EarliestOffset(),
	}

	if cfg.OutputFormat == models.FormatConsole || cfg.OutputFile == "" {
		return exporter.NewConsoleExporter().ExportStat(view)
	}

	switch cfg.OutputFormat {
	case models.FormatJSON:
		return (&exporter.StatJSONExporter{PrettyPrint: true}).Export(view, cfg.OutputFile)
	default:
		return exporter.NewConsoleExporter().ExportStat(view)
	}
}

func runSeqLocate(cfg *models.Config, state *replstate.State) error {
	snap := state.Snapshot()

	if cfg.PeerSetRepr != "" {
		peer, err := gtid.DecodeSet(cfg.PeerSetRepr)
		if err != nil {
			return fmt.Errorf("gtidxctl: invalid -peer-set: %w", err)
		}
		continueOffset, continueSet := snap.Seq.XSync(peer)
		fmt.Printf("continue_offset=%d continue_set=%s\n", continueOffset, continueSet)
		return nil
	}

	bounds := snap.Seq.Bounds()
	idx, ok := seqindex.LocateOffset(bounds, cfg.Offset)
	if !ok {
		fmt.Printf("offset %d is beyond every live segment\n", cfg.Offset)
		return nil
	}
	b := bounds[idx]
	fmt.Printf("offset %d falls in segment %d: uuid=%s gno=[%d,%d] offsets=[%d,%d]\n",
		cfg.Offset, idx, b.UUID, b.BaseGno+gtid.GNO(b.TrimmedGno), b.BaseGno+gtid.GNO(b.LiveGno)-1, b.FirstOffset, b.LastOffset)
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/OneOfOne/xxhash"
	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/redisgtid/gtidcore/gtid"
	"github.com/redisgtid/gtidcore/replstate"
	"github.com/redisgtid/gtidcore/seqindex"
	"github.com/redisgtid/gtidcore/syncmode"
)

// snapshotPayload is the JSON body of the on-disk debug snapshot for GTIDX
// SEQ DUMP/LOAD. The file holds the body gzip-compressed, with an xxhash
// checksum of the uncompressed JSON prepended so a truncated or corrupted
// dump is caught at load time rather than silently misparsed.
type snapshotPayload struct {
	Executed string           `json:"executed"`
	Lost     string           `json:"lost"`
	Mode     syncmode.Mode    `json:"mode"`
	Entries  []seqindex.Entry `json:"entries"`
}

const snapshotChecksumLen = 8

func dumpSnapshot(path string, state *replstate.State) error {
	snap := state.Snapshot()

	payload := snapshotPayload{
		Executed: snap.Executed.String(),
		Lost:     snap.Lost.String(),
		Mode:     snap.Cur.Mode,
		Entries:  snap.Seq.Entries(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gtidxctl: marshal snapshot: %w", err)
	}

	checksum := xxhash.Checksum64(body)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gtidxctl: create snapshot file: %w", err)
	}
	defer f.Close()

	var checksumBuf [snapshotChecksumLen]byte
	for i := 0; i < snapshotChecksumLen; i++ {
		checksumBuf[i] = byte(checksum >> (8 * i))
	}
	if _, err := f.Write(checksumBuf[:]); err != nil {
		return fmt.Errorf("gtidxctl: write checksum: %w", err)
	}

	gw := gzip.NewWriter(f)
	if _, err := gw.Write(body); err != nil {
		return fmt.Errorf("gtidxctl: write snapshot body: %w", err)
	}
	return gw.Close()
}

func loadSnapshot(path string) (*replstate.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gtidxctl: open snapshot file: %w", err)
	}
	defer f.Close()

	var checksumBuf [snapshotChecksumLen]byte
	if _, err := io.ReadFull(f, checksumBuf[:]); err != nil {
		return nil, fmt.Errorf("gtidxctl: read checksum: %w", err)
	}
	var wantChecksum uint64
	for i := 0; i < snapshotChecksumLen; i++ {
		wantChecksum |= uint64(checksumBuf[i]) << (8 * i)
	}

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gtidxctl: open snapshot gzip stream: %w", err)
	}
	defer gr.Close()

	body, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("gtidxctl: read snapshot body: %w", err)
	}

	if got := xxhash.Checksum64(body); got != wantChecksum {
		return nil, fmt.Errorf("gtidxctl: snapshot checksum mismatch: got %x, want %x", got, wantChecksum)
	}

	var payload snapshotPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gtidxctl: unmarshal snapshot: %w", err)
	}

	executed, err := gtid.DecodeSet(payload.Executed)
	if err != nil {
		return nil, fmt.Errorf("gtidxctl: decode executed set: %w", err)
	}
	lost, err := gtid.DecodeSet(payload.Lost)
	if err != nil {
		return nil, fmt.Errorf("gtidxctl: decode lost set: %w", err)
	}

	seq := seqindex.LoadEntries(payload.Entries)
	return replstate.FromSnapshot(executed, lost, seq, payload.Mode), nil
}

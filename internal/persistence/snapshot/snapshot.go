// Package snapshot exports and imports single games as zstd-compressed
// files: a JSON header line followed by the JSON state.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"

	"github.com/talgya/agro-hegemony/internal/engine"
)

// FormatVersion is bumped when the file layout changes.
const FormatVersion = 1

// Header describes the game inside a snapshot file.
type Header struct {
	Version       int    `json:"version"`
	GameID        string `json:"game_id"`
	Ruleset       string `json:"ruleset"`
	Role          string `json:"role"`
	StateVersion  uint64 `json:"state_version"`
	Turn          int    `json:"turn"`
	CatalogDigest string `json:"catalog_digest,omitempty"`
	ExportedAt    string `json:"exported_at"`
}

// Write stores st at path and returns the compressed size in bytes.
func Write(path string, st *engine.State, catalogDigest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hdr := Header{
		Version:       FormatVersion,
		GameID:        st.GameID,
		Ruleset:       string(st.Ruleset),
		Role:          st.Role,
		StateVersion:  st.Version,
		Turn:          st.Time.Turn,
		CatalogDigest: catalogDigest,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	hb, _ := json.Marshal(hdr)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return 0, err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return 0, err
	}
	if err := json.NewEncoder(bw).Encode(st); err != nil {
		enc.Close()
		return 0, fmt.Errorf("encode state: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	slog.Info("snapshot written", "game", st.GameID, "path", path, "size", humanize.Bytes(uint64(info.Size())))
	return info.Size(), nil
}

// Read loads a snapshot written by Write.
func Read(path string) (Header, *engine.State, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, nil, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, nil, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != FormatVersion {
		return hdr, nil, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}

	var st engine.State
	if err := json.NewDecoder(br).Decode(&st); err != nil {
		return hdr, nil, fmt.Errorf("decode state: %w", err)
	}
	return hdr, &st, nil
}

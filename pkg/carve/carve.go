package carve

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// Signature is the fixed 8-byte sequence that marks the start of a PNG stream.
var Signature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

const lengthFieldBytes = 4

// Match records one signature occurrence within the scanned input.
type Match struct {
	// Offset is the byte position of the signature in the input.
	Offset int64

	// DeclaredLength is the unsigned 32-bit value of the four bytes
	// immediately after the signature, read in little-endian order.
	// Extraction captures DeclaredLength + 8 bytes starting at Offset.
	DeclaredLength uint32

	// Size is the number of bytes actually extracted. It is smaller than
	// DeclaredLength + 8 when the range runs past the end of the input.
	Size int

	// Path is the output file the match was written to. Empty until the
	// match has been extracted.
	Path string
}

// Options configures Extract.
type Options struct {
	// OutputDir is the directory extracted images are written to,
	// created on demand. An existing directory is reused.
	OutputDir string

	// Logger receives per-match diagnostics. Defaults to a no-op logger.
	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		OutputDir: "pngs",
		Logger:    zerolog.Nop(),
	}
}

// Report summarizes one extraction run over a single input file.
type Report struct {
	Path     string
	FileSize int64
	Matches  []Match
}

// Scan returns every occurrence of the PNG signature in data, in offset
// order, with the declared length and the size extraction would capture.
//
// Every byte offset is a candidate, so a signature inside a previously
// matched range is still reported.
func Scan(data []byte) []Match {
	var matches []Match

	for from := 0; ; {
		i := bytes.Index(data[from:], Signature)
		if i < 0 {
			return matches
		}
		off := from + i

		declared := declaredLength(data[off+len(Signature):])
		matches = append(matches, Match{
			Offset:         int64(off),
			DeclaredLength: declared,
			Size:           len(extractRange(data, off, declared)),
		})

		from = off + 1
	}
}

// declaredLength decodes the little-endian length field. A short field near
// end of input decodes as if zero-padded.
func declaredLength(rest []byte) uint32 {
	var field [lengthFieldBytes]byte
	copy(field[:], rest)
	return binary.LittleEndian.Uint32(field[:])
}

// extractRange slices declared + 8 bytes starting at off, truncated at the
// end of data. A truncated range is not an error; the short slice is what
// gets written.
func extractRange(data []byte, off int, declared uint32) []byte {
	end := int64(off) + int64(declared) + int64(len(Signature))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}

// Extract scans the file at path and writes one output file per signature
// match into opts.OutputDir, named <offset>.png. The output directory is
// only created when there is at least one match. Existing output files with
// the same name are overwritten.
func Extract(path string, opts Options) (Report, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOptions().OutputDir
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("open input: %w", err)
	}

	report := Report{Path: path, FileSize: int64(len(data))}
	opts.Logger.Debug().Str("path", path).Int64("size", report.FileSize).Msg("scanning")

	matches := Scan(data)
	if len(matches) == 0 {
		return report, nil
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}

	for _, m := range matches {
		out := filepath.Join(opts.OutputDir, strconv.FormatInt(m.Offset, 10)+".png")
		payload := extractRange(data, int(m.Offset), m.DeclaredLength)

		if m.Size != int(m.DeclaredLength)+len(Signature) {
			opts.Logger.Warn().
				Int64("offset", m.Offset).
				Uint32("declared", m.DeclaredLength).
				Int("available", m.Size).
				Msg("declared range runs past end of file, output truncated")
		}

		if err := os.WriteFile(out, payload, 0o644); err != nil {
			return report, fmt.Errorf("write %s: %w", out, err)
		}

		m.Path = out
		report.Matches = append(report.Matches, m)
		opts.Logger.Debug().Int64("offset", m.Offset).Str("out", out).Int("bytes", m.Size).Msg("extracted")
	}

	return report, nil
}

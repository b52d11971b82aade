package createdat

import (
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// Source describes where a CreatedAt timestamp was derived from.
//
// The priority order is:
//  1. metadata
//  2. filename
//  3. mtime
//  4. unknown
type Source string

const (
	SourceMetadata Source = "metadata"
	SourceFilename Source = "filename"
	SourceMtime    Source = "mtime"
	SourceUnknown  Source = "unknown"
)

// Result contains a best-effort creation timestamp and its source.
type Result struct {
	CreatedAt time.Time
	Source    Source
}

// MetadataExtractor extracts an embedded creation timestamp from a file's
// content. Implementations return (t, true, nil) when a timestamp is found
// and (zero, false, nil) when the format carries none. Errors are treated
// as best-effort failures by Determine.
type MetadataExtractor interface {
	CreatedAt(path string, r io.Reader) (time.Time, bool, error)
}

// Options configures Determine.
type Options struct {
	// Location is used for timestamps parsed from filenames, which carry
	// no timezone. If nil, time.Local is used.
	Location *time.Location

	// Metadata optionally extracts embedded timestamps. If nil, the
	// default EXIF-based extractor is used; plain-text files simply fall
	// through to the filename and mtime sources.
	Metadata MetadataExtractor
}

// Determine returns the best-effort created-at timestamp for a path.
//
// Creation time proper (birthtime) is not portably exposed by io/fs, so the
// filesystem fallback is the modification time. Filenames that already
// carry a date prefix take priority over it, which recovers the intended
// date for files written or renamed after the fact.
func Determine(fsys fs.FS, path string, opts Options) (Result, error) {
	path = filepath.Clean(path)

	info, err := fs.Stat(fsys, path)
	if err != nil {
		return Result{}, err
	}
	if info.IsDir() {
		return Result{}, fs.ErrInvalid
	}

	metadata := opts.Metadata
	if metadata == nil {
		metadata = exifExtractor{}
	}

	f, err := fsys.Open(path)
	if err != nil {
		return Result{}, err
	}
	createdAt, ok, metaErr := metadata.CreatedAt(path, f)
	_ = f.Close()
	if metaErr == nil && ok && !createdAt.IsZero() {
		return Result{CreatedAt: createdAt, Source: SourceMetadata}, nil
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	if t, ok := parseFromFilename(filepath.Base(path), loc); ok {
		return Result{CreatedAt: t, Source: SourceFilename}, nil
	}

	if mtime := info.ModTime(); !mtime.IsZero() {
		return Result{CreatedAt: mtime, Source: SourceMtime}, nil
	}

	return Result{Source: SourceUnknown}, nil
}

// Recognized filename shapes, after an optional PLAN/PLAN- prefix:
//
//	2026-01-29_09:30-global-sorting.md   (already stamped by this tool)
//	2026-01-29_global-sorting.md
//	2026-01-29-global-sorting.md
//	20260129-093000-global-sorting.md
var (
	reStamped  = regexp.MustCompile(`(?i)^(?:PLAN-?)?(\d{4})-(\d{2})-(\d{2})_(\d{2}):(\d{2})`)
	reDateOnly = regexp.MustCompile(`(?i)^(?:PLAN-?)?(\d{4})-(\d{2})-(\d{2})[-_]`)
	reCompact  = regexp.MustCompile(`(?i)^(?:PLAN-?)?(\d{8})-(\d{6})`)
)

func parseFromFilename(filename string, loc *time.Location) (time.Time, bool) {
	if m := reStamped.FindStringSubmatch(filename); m != nil {
		return dateTime(m[1], m[2], m[3], m[4], m[5], "0", loc)
	}
	if m := reDateOnly.FindStringSubmatch(filename); m != nil {
		return dateTime(m[1], m[2], m[3], "0", "0", "0", loc)
	}
	if m := reCompact.FindStringSubmatch(filename); m != nil {
		d, hms := m[1], m[2]
		return dateTime(d[0:4], d[4:6], d[6:8], hms[0:2], hms[2:4], hms[4:6], loc)
	}
	return time.Time{}, false
}

func dateTime(year, month, day, hour, minute, sec string, loc *time.Location) (time.Time, bool) {
	parts := []string{year, month, day, hour, minute, sec}
	vals := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		vals[i] = n
	}
	if vals[1] < 1 || vals[1] > 12 || vals[2] < 1 || vals[2] > 31 {
		return time.Time{}, false
	}
	return time.Date(vals[0], time.Month(vals[1]), vals[2], vals[3], vals[4], vals[5], 0, loc), true
}

package createdat

import (
	"bytes"
	"io"
	"testing"
	"testing/fstest"
	"time"
)

type fakeExtractor struct {
	t   time.Time
	ok  bool
	err error
}

func (f fakeExtractor) CreatedAt(string, io.Reader) (time.Time, bool, error) {
	return f.t, f.ok, f.err
}

func TestDetermine_PriorityOrder(t *testing.T) {
	loc := time.UTC
	metaTime := time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
	mtime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		path       string
		extractor  MetadataExtractor
		wantTime   time.Time
		wantSource Source
	}{
		{
			name:       "metadata wins over filename and mtime",
			path:       "2026-01-29_notes.md",
			extractor:  fakeExtractor{t: metaTime, ok: true},
			wantTime:   metaTime,
			wantSource: SourceMetadata,
		},
		{
			name:       "filename wins over mtime",
			path:       "2026-01-29_notes.md",
			extractor:  fakeExtractor{},
			wantTime:   time.Date(2026, 1, 29, 0, 0, 0, 0, loc),
			wantSource: SourceFilename,
		},
		{
			name:       "mtime when nothing else matches",
			path:       "notes.md",
			extractor:  fakeExtractor{},
			wantTime:   mtime,
			wantSource: SourceMtime,
		},
		{
			name:       "extractor error falls through",
			path:       "notes.md",
			extractor:  fakeExtractor{t: metaTime, ok: true, err: io.ErrUnexpectedEOF},
			wantTime:   mtime,
			wantSource: SourceMtime,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				tc.path: &fstest.MapFile{Data: []byte("x"), ModTime: mtime},
			}

			res, err := Determine(fsys, tc.path, Options{Location: loc, Metadata: tc.extractor})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Source != tc.wantSource {
				t.Fatalf("source: got %q want %q", res.Source, tc.wantSource)
			}
			if !res.CreatedAt.Equal(tc.wantTime) {
				t.Fatalf("time:\n got: %v\nwant: %v", res.CreatedAt, tc.wantTime)
			}
		})
	}
}

func TestParseFromFilename(t *testing.T) {
	loc := time.UTC

	testCases := []struct {
		filename string
		want     time.Time
		ok       bool
	}{
		{"2026-01-29_09:30-global-sorting.md", time.Date(2026, 1, 29, 9, 30, 0, 0, loc), true},
		{"2026-01-29_global-sorting.md", time.Date(2026, 1, 29, 0, 0, 0, 0, loc), true},
		{"2026-01-29-global-sorting.md", time.Date(2026, 1, 29, 0, 0, 0, 0, loc), true},
		{"20260129-093015-sorting.md", time.Date(2026, 1, 29, 9, 30, 15, 0, loc), true},
		{"PLAN-2026-01-29_sorting.md", time.Date(2026, 1, 29, 0, 0, 0, 0, loc), true},
		{"plan2026-01-29_sorting.md", time.Date(2026, 1, 29, 0, 0, 0, 0, loc), true},
		{"global-sorting.md", time.Time{}, false},
		{"2026-13-01_bad-month.md", time.Time{}, false},
		{"2026-01-32_bad-day.md", time.Time{}, false},
		{"123-01-29_short-year.md", time.Time{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			got, ok := parseFromFilename(tc.filename, loc)
			if ok != tc.ok {
				t.Fatalf("ok: got %v want %v", ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("time:\n got: %v\nwant: %v", got, tc.want)
			}
		})
	}
}

func TestDetermine_DirectoryIsInvalid(t *testing.T) {
	fsys := fstest.MapFS{
		"dir/file.md": &fstest.MapFile{Data: []byte("x")},
	}

	if _, err := Determine(fsys, "dir", Options{}); err == nil {
		t.Fatalf("expected error for directory")
	}
}

func TestExifExtractor_NonExifContentIsNotFound(t *testing.T) {
	tm, ok, err := (exifExtractor{}).CreatedAt("a.md", bytes.NewReader([]byte("# markdown, not a jpeg")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false")
	}
	if !tm.IsZero() {
		t.Fatalf("expected zero time")
	}
}

package createdat

import (
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

type exifExtractor struct{}

func (e exifExtractor) CreatedAt(path string, r io.Reader) (time.Time, bool, error) {
	x, err := exif.Decode(r)
	if err != nil {
		// Non-EXIF content (Markdown, raw binaries) lands here; the
		// caller falls through to the other sources.
		return time.Time{}, false, nil
	}

	// Prefer DateTimeOriginal over the generic DateTime.
	for _, tag := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		if tm, ok := exifTime(x, tag); ok {
			return tm, true, nil
		}
	}
	if t, err := x.DateTime(); err == nil {
		return t, true, nil
	}

	return time.Time{}, false, nil
}

func exifTime(x *exif.Exif, tag exif.FieldName) (time.Time, bool) {
	f, err := x.Get(tag)
	if err != nil {
		return time.Time{}, false
	}
	s, err := f.StringVal()
	if err != nil {
		return time.Time{}, false
	}

	// EXIF DateTime format carries no timezone; interpret as Local.
	tm, err := time.ParseInLocation("2006:01:02 15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return tm, true
}

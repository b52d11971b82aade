// Package createdat provides best-effort attribution of a file's creation
// timestamp.
//
// Attribution follows a priority order: embedded metadata (EXIF), a date
// embedded in the filename, then the filesystem modification time.
package createdat

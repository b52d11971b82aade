// Package carve finds embedded PNG images in arbitrary binary files and
// extracts each candidate to its own file.
//
// The scan is a plain signature search: every occurrence of the 8-byte PNG
// magic is a match, and the four bytes after it are read as a little-endian
// byte count for the extracted range. No chunk structure or CRC is
// validated; the output is whatever bytes the input held at that range.
package carve

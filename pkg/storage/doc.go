// Package storage lays out downloaded posts on disk.
//
// Every post gets its own directory named after the post's UTC timestamp:
//
//	<output>/<username>/2024-03-09_17-04-05_UTC/
//
// Files are written through a temporary file and renamed into place, so an
// interrupted download never leaves a truncated file under its final name.
package storage

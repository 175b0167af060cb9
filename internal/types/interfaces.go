// Package types defines interfaces for ufcsort components.
package types

import "context"

// Journal records successful placements so they can be listed or undone
type Journal interface {
	// Record appends a completed operation to the current run
	Record(ctx context.Context, op Operation) error

	// ListAll returns every recorded entry, oldest first
	ListAll(ctx context.Context) ([]JournalEntry, error)

	// Clean removes all recorded entries
	Clean(ctx context.Context) error
}

// Tagger embeds descriptor metadata into a placed media file
type Tagger interface {
	// Tag writes metadata into the file at path. Unsupported formats are skipped.
	Tag(ctx context.Context, path string, desc Descriptor) error
}

package ingest

import "context"

// Result is the text digest produced for one repository.
//
// The three blobs are opaque to callers; the processor persists them
// verbatim without interpreting, filtering, or validating them.
type Result struct {
	// Summary is a short header: repository name, branch, file count.
	Summary string

	// Tree is a rendered directory structure.
	Tree string

	// Content is the concatenation of all analyzed file contents,
	// each preceded by a file banner.
	Content string
}

// Ingester converts a repository reference (local path or remote URL)
// into a text digest.
type Ingester interface {
	Ingest(ctx context.Context, source string) (*Result, error)
}

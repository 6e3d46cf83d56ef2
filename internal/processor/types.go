package processor

import "time"

// Options tunes a single processing run.
type Options struct {
	// OutputDir is where output artifacts are written.
	// If empty, the service's working directory is used.
	OutputDir string

	// ID names the output files. If empty, an identifier is derived
	// from the repository reference.
	ID string
}

// Candidate is a subdirectory of the working directory, treated as a
// materialized repository available for processing.
type Candidate struct {
	// Name is the directory name, used as the identifier when the
	// candidate is processed.
	Name string

	// Path is the absolute directory path.
	Path string

	// ModTime orders candidates newest-first.
	ModTime time.Time
}

// Result holds the outcome of one processing run: the four output file
// paths plus the raw text blobs that were written.
type Result struct {
	SummaryFile  string
	TreeFile     string
	ContentFile  string
	MetadataFile string

	Summary string
	Tree    string
	Content string
}

// Metadata is the record persisted as <id>_metadata.json. It is built
// once per run and never mutated afterwards.
type Metadata struct {
	RepositoryID string        `json:"repository_id"`
	ProcessedAt  string        `json:"processed_at"`
	Files        MetadataFiles `json:"files"`
	Stats        MetadataStats `json:"stats"`
}

// MetadataFiles maps each artifact to its absolute path.
type MetadataFiles struct {
	Summary string `json:"summary"`
	Tree    string `json:"tree"`
	Content string `json:"content"`
}

// MetadataStats holds the character counts of the written artifacts.
type MetadataStats struct {
	SummaryLength int `json:"summary_length"`
	TreeLength    int `json:"tree_length"`
	ContentLength int `json:"content_length"`
}

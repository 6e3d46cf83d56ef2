// Package processor implements the repository-processing workflow: resolve
// a repository reference, delegate to the ingestion capability, and write
// four output artifacts (summary, tree, content, metadata).
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoingest/internal/ingest"
)

// ErrNoCandidates is returned by ProcessLatest when the working directory
// contains no repository directories.
var ErrNoCandidates = errors.New("no repository directories found in working directory")

// timestampFormat is the human-readable format used for the processed_at
// metadata field.
const timestampFormat = "2006-01-02 15:04:05"

// Service turns one repository reference into four on-disk artifacts.
//
// The ingestion capability is a black box: its output is persisted
// verbatim, with no validation, timeout, or retry imposed here.
type Service struct {
	workDir  string
	ingester ingest.Ingester
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a processing service rooted at workDir. The working
// directory is created if it does not exist; it is both the scratch space
// scanned for candidates and the default output destination.
func NewService(workDir string, ingester ingest.Ingester, log *zap.Logger) (*Service, error) {
	if workDir == "" {
		return nil, fmt.Errorf("working directory cannot be empty")
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating working directory %s: %w", workDir, err)
	}

	log.Info("using working directory", zap.String("path", workDir))

	return &Service{
		workDir:  workDir,
		ingester: ingester,
		log:      log,
		now:      time.Now,
	}, nil
}

// WorkDir returns the configured working directory.
func (s *Service) WorkDir() string {
	return s.workDir
}

// DiscoverCandidates lists the immediate subdirectories of the working
// directory, newest first (by directory modification time, stable on
// ties). Listing failures are absorbed: they are logged and an empty
// slice is returned.
func (s *Service) DiscoverCandidates() []Candidate {
	entries, err := os.ReadDir(s.workDir)
	if err != nil {
		s.log.Warn("listing working directory failed",
			zap.String("path", s.workDir),
			zap.Error(err))
		return nil
	}

	var candidates []Candidate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.log.Warn("skipping unreadable candidate",
				zap.String("name", entry.Name()),
				zap.Error(err))
			continue
		}
		candidates = append(candidates, Candidate{
			Name:    entry.Name(),
			Path:    filepath.Join(s.workDir, entry.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ModTime.After(candidates[j].ModTime)
	})

	return candidates
}

// Process ingests one repository reference (local path or remote URL) and
// writes the four output artifacts.
//
// A failure partway through may leave fewer than four files written;
// callers must treat the run as failed and not assume any file exists.
func (s *Service) Process(ctx context.Context, ref string, opts Options) (*Result, error) {
	if ref == "" {
		return nil, fmt.Errorf("repository reference cannot be empty")
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = s.workDir
	}
	// Metadata records absolute artifact paths.
	outputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}
	id := opts.ID
	if id == "" {
		id = DeriveID(ref)
	}

	s.log.Info("processing repository",
		zap.String("reference", ref),
		zap.String("id", id),
		zap.String("output_dir", outputDir))

	result, err := s.ingester.Ingest(ctx, ref)
	if err != nil {
		s.log.Error("ingestion failed", zap.String("reference", ref), zap.Error(err))
		return nil, fmt.Errorf("ingesting %s: %w", ref, err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		s.log.Error("creating output directory failed", zap.Error(err))
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	paths := artifactPaths(outputDir, id)

	artifacts := []struct {
		kind    string
		path    string
		content string
	}{
		{"summary", paths.Summary, result.Summary},
		{"tree", paths.Tree, result.Tree},
		{"content", paths.Content, result.Content},
	}
	for _, a := range artifacts {
		if err := os.WriteFile(a.path, []byte(a.content), 0644); err != nil {
			s.log.Error("writing artifact failed",
				zap.String("kind", a.kind),
				zap.String("path", a.path),
				zap.Error(err))
			return nil, fmt.Errorf("writing %s file: %w", a.kind, err)
		}
	}

	metadataPath := filepath.Join(outputDir, id+"_metadata.json")
	metadata := Metadata{
		RepositoryID: id,
		ProcessedAt:  s.now().Format(timestampFormat),
		Files:        paths,
		Stats: MetadataStats{
			SummaryLength: utf8.RuneCountInString(result.Summary),
			TreeLength:    utf8.RuneCountInString(result.Tree),
			ContentLength: utf8.RuneCountInString(result.Content),
		},
	}

	encoded, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		s.log.Error("encoding metadata failed", zap.Error(err))
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(metadataPath, encoded, 0644); err != nil {
		s.log.Error("writing metadata failed", zap.String("path", metadataPath), zap.Error(err))
		return nil, fmt.Errorf("writing metadata file: %w", err)
	}

	s.log.Info("repository processing complete",
		zap.String("id", id),
		zap.String("output_dir", outputDir))

	return &Result{
		SummaryFile:  paths.Summary,
		TreeFile:     paths.Tree,
		ContentFile:  paths.Content,
		MetadataFile: metadataPath,
		Summary:      result.Summary,
		Tree:         result.Tree,
		Content:      result.Content,
	}, nil
}

// ProcessLatest processes the most recently created candidate directory.
// The candidate's directory name becomes the identifier. Returns
// ErrNoCandidates when the working directory has no subdirectories; the
// ingestion capability is never called in that case.
func (s *Service) ProcessLatest(ctx context.Context, outputDir string) (*Result, error) {
	candidates := s.DiscoverCandidates()
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	latest := candidates[0]
	s.log.Info("processing latest repository", zap.String("path", latest.Path))

	return s.Process(ctx, latest.Path, Options{OutputDir: outputDir, ID: latest.Name})
}

// DeriveID derives the output file identifier from a repository
// reference: the basename of a local directory path, or the final URL
// path segment with a trailing .git suffix stripped.
func DeriveID(ref string) string {
	if info, err := os.Stat(ref); err == nil && info.IsDir() {
		return filepath.Base(filepath.Clean(ref))
	}
	if ingest.IsRemote(ref) {
		return ingest.RepoName(ref)
	}
	// Not an existing directory and not obviously a URL; fall back to
	// the last path segment.
	return strings.TrimSuffix(filepath.Base(filepath.Clean(ref)), ".git")
}

// artifactPaths builds the three text artifact paths for an identifier.
func artifactPaths(outputDir, id string) MetadataFiles {
	return MetadataFiles{
		Summary: filepath.Join(outputDir, id+"_summary.txt"),
		Tree:    filepath.Join(outputDir, id+"_tree.txt"),
		Content: filepath.Join(outputDir, id+"_content.txt"),
	}
}

// Package ingest turns a repository into three text artifacts: a summary,
// a rendered directory tree, and a concatenated content digest.
//
// Remote sources are cloned into the working directory with go-git before
// digesting, so each clone becomes a discoverable candidate for later
// runs. Local sources are digested in place.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoingest/internal/config"
	"github.com/fyrsmithlabs/repoingest/internal/ignore"
)

// defaultSkipDirs are directories that are never digested. These contain
// generated code, dependencies, or version control data.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	".cache":       true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"target":       true, // Rust/Java build output
}

// ignoreFiles are the gitignore-style files honored inside a repository.
var ignoreFiles = []string{".gitignore", ".repoingestignore"}

const fileBanner = "================================================"

// Digester is the built-in Ingester implementation.
type Digester struct {
	cloneDir    string
	maxFileSize int64
	exclude     []string
	log         *zap.Logger
}

// NewDigester creates a digest engine. Remote sources are cloned under
// cloneDir before digesting.
func NewDigester(cloneDir string, cfg config.IngestConfig, log *zap.Logger) *Digester {
	maxSize := cfg.MaxFileSize
	if maxSize == 0 {
		maxSize = 1024 * 1024
	}
	return &Digester{
		cloneDir:    cloneDir,
		maxFileSize: maxSize,
		exclude:     cfg.Exclude,
		log:         log,
	}
}

// Ingest digests the repository at source, cloning first when source is a
// remote URL.
func (d *Digester) Ingest(ctx context.Context, source string) (*Result, error) {
	path := source
	name := source

	if IsRemote(source) {
		cloned, err := d.clone(ctx, source)
		if err != nil {
			return nil, err
		}
		path = cloned
		name = RepoName(source)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source must be a directory: %s", path)
	}

	return d.digest(ctx, path, name)
}

// digest walks the tree at root and builds the three artifacts.
func (d *Digester) digest(ctx context.Context, root, name string) (*Result, error) {
	root = filepath.Clean(root)

	exclude := d.exclude
	repoPatterns, err := ignore.NewParser(ignoreFiles).ParseRepo(root)
	if err != nil {
		return nil, fmt.Errorf("parsing ignore files: %w", err)
	}
	exclude = append(append([]string{}, exclude...), repoPatterns...)

	var files []string
	var content strings.Builder

	err = filepath.Walk(root, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if defaultSkipDirs[filepath.Base(filePath)] && filePath != root {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(root, filePath)
		if err != nil {
			return fmt.Errorf("computing relative path: %w", err)
		}

		if !d.shouldInclude(relPath, info, exclude) {
			return nil
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", filePath, err)
		}

		// Binary files (invalid UTF-8) are skipped silently.
		if !utf8.Valid(data) {
			return nil
		}

		files = append(files, filepath.ToSlash(relPath))
		content.WriteString(fileBanner + "\n")
		content.WriteString("File: " + filepath.ToSlash(relPath) + "\n")
		content.WriteString(fileBanner + "\n")
		content.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			content.WriteByte('\n')
		}
		content.WriteByte('\n')
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking file tree: %w", err)
	}

	sort.Strings(files)

	summary := d.summarize(root, name, len(files))
	tree := renderTree(filepath.Base(root), files)

	d.log.Debug("repository digested",
		zap.String("path", root),
		zap.Int("files", len(files)))

	return &Result{
		Summary: summary,
		Tree:    tree,
		Content: content.String(),
	}, nil
}

// summarize renders the summary header. The branch line is omitted when
// the source is not a git repository or detection fails.
func (d *Digester) summarize(root, name string, fileCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", name)
	if branch := detectBranch(root); branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", branch)
	}
	fmt.Fprintf(&b, "Files analyzed: %d\n", fileCount)
	return b.String()
}

// shouldInclude determines if a file belongs in the digest.
func (d *Digester) shouldInclude(relPath string, info os.FileInfo, exclude []string) bool {
	if info.Size() > d.maxFileSize {
		return false
	}

	basename := filepath.Base(relPath)
	for _, pattern := range exclude {
		if matched, _ := filepath.Match(pattern, basename); matched {
			return false
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return false
		}
		// Subtree patterns like "testdata/**" exclude everything under
		// the named directory, at any depth.
		if strings.Contains(pattern, "**") {
			prefix := strings.TrimSuffix(pattern, "/**")
			sep := string(filepath.Separator)
			if strings.HasPrefix(relPath, prefix+sep) ||
				strings.Contains(relPath, sep+prefix+sep) {
				return false
			}
		}
	}

	return true
}

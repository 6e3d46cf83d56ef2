// Package ignore parses gitignore-style files into exclude patterns for
// the digest engine.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Parser reads and parses gitignore-style files.
type Parser struct {
	// IgnoreFiles is the list of ignore file names to look for.
	IgnoreFiles []string
}

// NewParser creates an ignore file parser that reads the given file names
// from a repository root.
func NewParser(ignoreFiles []string) *Parser {
	return &Parser{IgnoreFiles: ignoreFiles}
}

// ParseRepo reads all ignore files from the repository root and returns
// combined exclude patterns. Missing files are skipped.
func (p *Parser) ParseRepo(repoRoot string) ([]string, error) {
	var patterns []string

	for _, ignoreFile := range p.IgnoreFiles {
		path := filepath.Join(repoRoot, ignoreFile)
		filePatterns, err := p.parseFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		patterns = append(patterns, filePatterns...)
	}

	return deduplicate(patterns), nil
}

func (p *Parser) parseFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		if line := parseLine(scanner.Text()); line != "" {
			patterns = append(patterns, expandPattern(line)...)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

// parseLine cleans a single line from a gitignore file.
// Returns empty string for comments, blank lines, and negation patterns
// (negation is not supported).
func parseLine(line string) string {
	line = strings.TrimRight(line, " \t")

	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return ""
	}

	// A leading slash anchors to the repo root; relative-path matching
	// already does that.
	return strings.TrimPrefix(line, "/")
}

// expandPattern converts a gitignore pattern into the pattern language
// understood by the digest engine: plain globs are matched against both
// the basename and the repo-relative path, and a "dir/**" pattern
// excludes the directory's subtree at any depth.
func expandPattern(pattern string) []string {
	// A trailing slash marks a directory; exclude its subtree.
	if strings.HasSuffix(pattern, "/") {
		return []string{pattern + "**"}
	}

	// A bare name without glob characters or an extension may be a file
	// (LICENSE, Makefile) or a directory (build, dist); emit the bare
	// pattern for the file case and the subtree form for the directory
	// case.
	if !strings.ContainsAny(pattern, "*?[") && !strings.Contains(pattern, ".") {
		return []string{pattern, pattern + "/**"}
	}

	return []string{pattern}
}

// deduplicate removes duplicate patterns while preserving order.
func deduplicate(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	return result
}

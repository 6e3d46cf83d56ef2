package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// IsRemote reports whether source is a remote repository locator rather
// than a local path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "ssh://") ||
		strings.HasPrefix(source, "git@")
}

// RepoName derives a repository name from a remote URL: the final path
// segment with a trailing .git suffix stripped.
func RepoName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	name := trimmed
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		name = trimmed[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// clone materializes a remote repository under the clone directory and
// returns the local path. An existing clone is reused as-is.
func (d *Digester) clone(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(d.cloneDir, 0755); err != nil {
		return "", fmt.Errorf("creating clone directory: %w", err)
	}

	target := filepath.Join(d.cloneDir, RepoName(url))

	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("clone target %s exists and is not a directory", target)
		}
		d.log.Info("reusing existing clone", zap.String("path", target))
		return target, nil
	}

	d.log.Info("cloning repository",
		zap.String("url", url),
		zap.String("path", target))

	_, err := git.PlainCloneContext(ctx, target, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return "", fmt.Errorf("cloning %s: %w", url, err)
	}

	return target, nil
}

// detectBranch returns the current git branch at path, or empty string if
// path is not a git repository or HEAD is detached.
func detectBranch(path string) string {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}

package ingest

import (
	"testing"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://github.com/org/repo.git", true},
		{"http://host/repo", true},
		{"ssh://git@host/repo.git", true},
		{"git@github.com:org/repo.git", true},
		{"/tmp/repos/myrepo", false},
		{"./relative/path", false},
		{"myrepo", false},
	}

	for _, tt := range tests {
		if got := IsRemote(tt.source); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestRepoName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/org/myrepo.git", "myrepo"},
		{"https://github.com/org/myrepo", "myrepo"},
		{"https://github.com/org/myrepo/", "myrepo"},
		{"git@github.com:org/myrepo.git", "myrepo"},
		{"ssh://git@host/team/myrepo.git", "myrepo"},
		{"myrepo.git", "myrepo"},
	}

	for _, tt := range tests {
		if got := RepoName(tt.url); got != tt.want {
			t.Errorf("RepoName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDetectBranchNonRepo(t *testing.T) {
	if branch := detectBranch(t.TempDir()); branch != "" {
		t.Errorf("detectBranch on non-repo = %q, want empty", branch)
	}
}

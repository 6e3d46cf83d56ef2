package processor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoingest/internal/ingest"
)

// fakeIngester implements ingest.Ingester for testing.
type fakeIngester struct {
	result     *ingest.Result
	err        error
	calls      int
	lastSource string
}

func (f *fakeIngester) Ingest(ctx context.Context, source string) (*ingest.Result, error) {
	f.calls++
	f.lastSource = source
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestService(t *testing.T, fake *fakeIngester) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir(), fake, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestProcessWritesFourArtifacts(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{
		Summary: "Repository: myrepo\nFiles analyzed: 2\n",
		Tree:    "Directory structure:\n└── myrepo/\n",
		Content: "================================================\nFile: a.txt\n",
	}}
	svc := newTestService(t, fake)

	repoDir := filepath.Join(t.TempDir(), "myrepo")
	require.NoError(t, os.Mkdir(repoDir, 0755))

	result, err := svc.Process(context.Background(), repoDir, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, fake.calls)
	assert.Equal(t, repoDir, fake.lastSource)

	wantFiles := map[string]string{
		result.SummaryFile:  "myrepo_summary.txt",
		result.TreeFile:     "myrepo_tree.txt",
		result.ContentFile:  "myrepo_content.txt",
		result.MetadataFile: "myrepo_metadata.json",
	}
	for path, name := range wantFiles {
		assert.Equal(t, filepath.Join(svc.WorkDir(), name), path)
		_, err := os.Stat(path)
		assert.NoError(t, err, "expected %s to exist", name)
	}

	summary, err := os.ReadFile(result.SummaryFile)
	require.NoError(t, err)
	assert.Equal(t, fake.result.Summary, string(summary))
}

func TestProcessMetadataStats(t *testing.T) {
	// Multibyte content: stats count characters, not bytes.
	fake := &fakeIngester{result: &ingest.Result{
		Summary: "Répository: café\n",
		Tree:    "└── café/\n",
		Content: "héllo wörld",
	}}
	svc := newTestService(t, fake)

	repoDir := filepath.Join(t.TempDir(), "café")
	require.NoError(t, os.Mkdir(repoDir, 0755))

	result, err := svc.Process(context.Background(), repoDir, Options{})
	require.NoError(t, err)

	raw, err := os.ReadFile(result.MetadataFile)
	require.NoError(t, err)

	var md Metadata
	require.NoError(t, json.Unmarshal(raw, &md))

	assert.Equal(t, "café", md.RepositoryID)
	assert.NotEmpty(t, md.ProcessedAt)
	assert.Equal(t, result.SummaryFile, md.Files.Summary)
	assert.Equal(t, result.TreeFile, md.Files.Tree)
	assert.Equal(t, result.ContentFile, md.Files.Content)
	assert.Equal(t, len([]rune(fake.result.Summary)), md.Stats.SummaryLength)
	assert.Equal(t, len([]rune(fake.result.Tree)), md.Stats.TreeLength)
	assert.Equal(t, len([]rune(fake.result.Content)), md.Stats.ContentLength)
}

func TestProcessEmptyReference(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{}}
	svc := newTestService(t, fake)

	_, err := svc.Process(context.Background(), "", Options{})
	require.Error(t, err)
	assert.Zero(t, fake.calls)
}

func TestProcessIngestErrorWritesNothing(t *testing.T) {
	ingestErr := errors.New("repository is malformed")
	fake := &fakeIngester{err: ingestErr}
	svc := newTestService(t, fake)

	outDir := t.TempDir()
	_, err := svc.Process(context.Background(), "https://host/org/broken.git", Options{OutputDir: outDir})
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestErr)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output files should exist after an ingestion failure")
}

func TestProcessOverwritesPriorOutput(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{Summary: "first"}}
	svc := newTestService(t, fake)

	repoDir := filepath.Join(t.TempDir(), "myrepo")
	require.NoError(t, os.Mkdir(repoDir, 0755))

	first, err := svc.Process(context.Background(), repoDir, Options{})
	require.NoError(t, err)

	fake.result = &ingest.Result{Summary: "second"}
	second, err := svc.Process(context.Background(), repoDir, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.SummaryFile, second.SummaryFile)

	content, err := os.ReadFile(second.SummaryFile)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestProcessExplicitIDAndOutputDir(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{}}
	svc := newTestService(t, fake)

	outDir := filepath.Join(t.TempDir(), "out", "nested")
	result, err := svc.Process(context.Background(), "https://host/org/myrepo.git", Options{
		OutputDir: outDir,
		ID:        "custom",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "custom_summary.txt"), result.SummaryFile)
	assert.Equal(t, filepath.Join(outDir, "custom_metadata.json"), result.MetadataFile)
}

func TestProcessRelativeOutputDirRecordsAbsolutePaths(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{Summary: "ok"}}
	svc := newTestService(t, fake)
	t.Chdir(t.TempDir())

	repoDir := filepath.Join(t.TempDir(), "myrepo")
	require.NoError(t, os.Mkdir(repoDir, 0755))

	result, err := svc.Process(context.Background(), repoDir, Options{OutputDir: "digests"})
	require.NoError(t, err)

	raw, err := os.ReadFile(result.MetadataFile)
	require.NoError(t, err)

	var md Metadata
	require.NoError(t, json.Unmarshal(raw, &md))

	for name, path := range map[string]string{
		"summary":  md.Files.Summary,
		"tree":     md.Files.Tree,
		"content":  md.Files.Content,
		"metadata": result.MetadataFile,
	} {
		assert.True(t, filepath.IsAbs(path), "%s path %q should be absolute", name, path)
	}
	assert.Equal(t, md.Files.Summary, result.SummaryFile)
}

func TestNewServiceRelativeWorkDir(t *testing.T) {
	t.Chdir(t.TempDir())

	fake := &fakeIngester{result: &ingest.Result{}}
	svc, err := NewService("repos", fake, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(svc.WorkDir()))

	require.NoError(t, os.Mkdir(filepath.Join(svc.WorkDir(), "candidate"), 0755))
	candidates := svc.DiscoverCandidates()
	require.Len(t, candidates, 1)
	assert.True(t, filepath.IsAbs(candidates[0].Path))
}

func TestDiscoverCandidates(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{}}
	svc := newTestService(t, fake)

	older := filepath.Join(svc.WorkDir(), "older")
	newer := filepath.Join(svc.WorkDir(), "newer")
	require.NoError(t, os.Mkdir(older, 0755))
	require.NoError(t, os.Mkdir(newer, 0755))
	// Plain files are not candidates.
	require.NoError(t, os.WriteFile(filepath.Join(svc.WorkDir(), "stray.txt"), []byte("x"), 0644))

	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)))

	candidates := svc.DiscoverCandidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "newer", candidates[0].Name)
	assert.Equal(t, "older", candidates[1].Name)
	assert.Equal(t, newer, candidates[0].Path)
}

func TestDiscoverCandidatesListingErrorAbsorbed(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{}}
	svc := newTestService(t, fake)

	require.NoError(t, os.RemoveAll(svc.WorkDir()))

	assert.Empty(t, svc.DiscoverCandidates())
}

func TestProcessLatestNoCandidates(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{}}
	svc := newTestService(t, fake)

	_, err := svc.ProcessLatest(context.Background(), "")
	require.ErrorIs(t, err, ErrNoCandidates)
	assert.Zero(t, fake.calls, "ingestion must not run when there are no candidates")
}

func TestProcessLatestSelectsNewest(t *testing.T) {
	fake := &fakeIngester{result: &ingest.Result{Summary: "ok"}}
	svc := newTestService(t, fake)

	older := filepath.Join(svc.WorkDir(), "older")
	newer := filepath.Join(svc.WorkDir(), "newer")
	require.NoError(t, os.Mkdir(older, 0755))
	require.NoError(t, os.Mkdir(newer, 0755))

	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)))

	result, err := svc.ProcessLatest(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, newer, fake.lastSource)
	assert.Equal(t, filepath.Join(svc.WorkDir(), "newer_summary.txt"), result.SummaryFile)
}

func TestDeriveID(t *testing.T) {
	localRepo := filepath.Join(t.TempDir(), "myrepo")
	if err := os.Mkdir(localRepo, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"local directory", localRepo, "myrepo"},
		{"local path with trailing slash", localRepo + string(filepath.Separator), "myrepo"},
		{"https url with .git", "https://host/org/myrepo.git", "myrepo"},
		{"https url without .git", "https://host/org/myrepo", "myrepo"},
		{"ssh url", "git@host:org/myrepo.git", "myrepo"},
		{"nonexistent path", "/a/b/myrepo", "myrepo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveID(tt.ref); got != tt.want {
				t.Errorf("DeriveID(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

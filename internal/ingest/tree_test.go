package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTreeSingleFile(t *testing.T) {
	got := renderTree("test1", []string{"example-text.txt"})

	want := "Directory structure:\n" +
		"└── test1/\n" +
		"    └── example-text.txt\n"
	assert.Equal(t, want, got)
}

func TestRenderTreeNested(t *testing.T) {
	got := renderTree("myrepo", []string{
		"README.md",
		"cmd/main.go",
		"internal/config/loader.go",
		"internal/config/types.go",
	})

	want := "Directory structure:\n" +
		"└── myrepo/\n" +
		"    ├── cmd/\n" +
		"    │   └── main.go\n" +
		"    ├── internal/\n" +
		"    │   └── config/\n" +
		"    │       ├── loader.go\n" +
		"    │       └── types.go\n" +
		"    └── README.md\n"
	assert.Equal(t, want, got)
}

func TestRenderTreeEmpty(t *testing.T) {
	got := renderTree("empty", nil)

	want := "Directory structure:\n" +
		"└── empty/\n"
	assert.Equal(t, want, got)
}

package config

// Config is the top-level repoingest configuration.
type Config struct {
	// WorkDir is the working directory scanned for candidate repositories
	// and used as the default output destination.
	WorkDir string `koanf:"workdir"`

	// OutputDir overrides where output artifacts are written.
	// If empty, artifacts land in WorkDir.
	OutputDir string `koanf:"output_dir"`

	Log    LogConfig    `koanf:"log"`
	Ingest IngestConfig `koanf:"ingest"`
}

// LogConfig controls log verbosity and encoding.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IngestConfig tunes the built-in digest engine.
type IngestConfig struct {
	// MaxFileSize is the maximum file size in bytes to include in the
	// content digest. Default: 1MB, Maximum: 10MB.
	MaxFileSize int64 `koanf:"max_file_size"`

	// Exclude are extra glob patterns for files to skip
	// (e.g., ["*.lock", "testdata/**"]).
	Exclude []string `koanf:"exclude"`
}

// Package main implements the repoingest CLI, which digests Git
// repositories into LLM-ready text artifacts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/repoingest/internal/config"
	"github.com/fyrsmithlabs/repoingest/internal/ingest"
	"github.com/fyrsmithlabs/repoingest/internal/logging"
	"github.com/fyrsmithlabs/repoingest/internal/processor"
)

var (
	flagRepo      string
	flagLatest    bool
	flagTempDir   string
	flagOutputDir string
	flagRepoID    string
	flagVerbose   bool
	flagConfig    string

	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repoingest",
	Short: "Digest Git repositories into LLM-ready text artifacts",
	Long: `repoingest processes a Git repository (local directory or remote URL)
into four output files: a summary, a directory tree, a concatenated
content digest, and a JSON metadata record.

Examples:
  # Process a remote repository
  repoingest --repo https://github.com/fyrsmithlabs/contextd.git

  # Process a local directory into a specific output directory
  repoingest --repo ./myrepo --output-dir ./digests

  # Process the most recently cloned repository in the working directory
  repoingest --latest

  # List candidate repositories in the working directory
  repoingest`,
	Version:      version,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&flagRepo, "repo", "", "repository path or URL to process")
	rootCmd.Flags().BoolVar(&flagLatest, "latest", false, "process the latest repository in the working directory")
	rootCmd.Flags().StringVar(&flagTempDir, "temp-dir", "", "working directory for repository processing")
	rootCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory to save the processed output")
	rootCmd.Flags().StringVar(&flagRepoID, "repo-id", "", "repository identifier for output naming")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "enable verbose logging")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config file")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagTempDir != "" {
		cfg.WorkDir = flagTempDir
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	digester := ingest.NewDigester(cfg.WorkDir, cfg.Ingest, logger.Named("ingest"))
	svc, err := processor.NewService(cfg.WorkDir, digester, logger.Named("processor"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	switch {
	case flagRepo != "":
		result, err := svc.Process(ctx, flagRepo, processor.Options{
			OutputDir: cfg.OutputDir,
			ID:        flagRepoID,
		})
		if err != nil {
			return err
		}
		printResult("Repository processed.", result)

	case flagLatest:
		result, err := svc.ProcessLatest(ctx, cfg.OutputDir)
		if err != nil {
			return err
		}
		printResult("Latest repository processed.", result)

	default:
		fmt.Print(formatCandidates(svc.DiscoverCandidates()))
	}

	return nil
}

// newLogger builds the CLI logger; --verbose overrides the configured
// level with debug.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	logCfg.Format = cfg.Log.Format

	level, err := logging.LevelFromString(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = level
	if flagVerbose {
		logCfg.Level = zapcore.DebugLevel
	}

	return logging.New(logCfg)
}

// printResult prints the four output file paths after a successful run.
func printResult(header string, result *processor.Result) {
	fmt.Println(header, "Files saved to:")
	fmt.Printf("  summary:  %s\n", result.SummaryFile)
	fmt.Printf("  tree:     %s\n", result.TreeFile)
	fmt.Printf("  content:  %s\n", result.ContentFile)
	fmt.Printf("  metadata: %s\n", result.MetadataFile)
}

// formatCandidates renders the no-argument candidate listing, newest
// first.
func formatCandidates(candidates []processor.Candidate) string {
	if len(candidates) == 0 {
		return "No repositories found in the working directory\n"
	}

	out := "Available repositories:\n"
	for i, c := range candidates {
		out += fmt.Sprintf("%d. %s - %s\n", i+1, c.Name, c.Path)
	}
	out += "\nRun with --repo <path> or --latest to process a repository\n"
	return out
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/logger"
	"github.com/timmy/docclass/internal/service"
)

// options mirrors the command line flags.
type options struct {
	all        bool
	dryRun     bool
	stats      bool
	batchSize  int
	configPath string
	rulesPath  string
}

// pipeline is what a command invocation runs against.
type pipeline interface {
	Run(ctx context.Context, opts service.SyncOptions) (*domain.RunStats, error)
	GetStats(ctx context.Context) (*domain.IndexStats, error)
	Close() error
}

// pipelineFactory builds the pipeline from the parsed flags.
type pipelineFactory func(ctx context.Context, opts *options, log *logger.Logger) (pipeline, error)

func main() {
	// Logs go to stderr; stdout carries the report.
	appLogger := logger.New(&logger.Config{
		Level:       envOr("LOG_LEVEL", "info"),
		Format:      envOr("LOG_FORMAT", "json"),
		Output:      os.Stderr,
		ServiceName: "docclass-classify",
	})
	logger.SetDefaultLogger(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(buildPipeline, appLogger)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(build pipelineFactory, log *logger.Logger) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify index documents and write category and access level back",
		Long: `Classify pages through the search index, derives a category, access level,
community and owner account for each document from its path and filename, and
writes the results back in merge batches.

By default only documents without a category are visited. Use --all to
reclassify everything, --dry-run to report without writing, and --stats to
print the current facet breakdown instead of running.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, build, opts, log)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.all, "all", false, "Reclassify all documents, not just unclassified ones")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show what would be classified without writing")
	flags.BoolVar(&opts.stats, "stats", false, "Only show current classification statistics")
	flags.IntVar(&opts.batchSize, "batch-size", 0, "Page size and write batch size (default from config, 100)")
	flags.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file (env: CONFIG_PATH)")
	flags.StringVar(&opts.rulesPath, "rules", "", "Path to a YAML rules file (default: built-in rules)")

	return cmd
}

func run(cmd *cobra.Command, build pipelineFactory, opts *options, log *logger.Logger) error {
	if opts.batchSize < 0 {
		return fmt.Errorf("--batch-size must be positive, got %d", opts.batchSize)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := build(ctx, opts, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.WithError(err).Warn("Failed to release resources")
		}
	}()

	out := cmd.OutOrStdout()

	if opts.stats {
		stats, statsErr := p.GetStats(ctx)
		if stats == nil {
			stats = domain.NewIndexStats()
		}
		if err := service.WriteStatsReport(out, stats); err != nil {
			return err
		}
		return statsErr
	}

	stats, runErr := p.Run(ctx, service.SyncOptions{
		ReclassifyAll: opts.all,
		DryRun:        opts.dryRun,
		BatchSize:     opts.batchSize,
	})
	if stats != nil {
		if err := service.WriteRunReport(out, stats); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

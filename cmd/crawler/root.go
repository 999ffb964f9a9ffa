package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/crawler/internal/config"
	"github.com/nao1215/crawler/internal/crawler"
	"github.com/nao1215/crawler/internal/database"
	"github.com/nao1215/crawler/internal/fetcher"
	clog "github.com/nao1215/crawler/internal/log"
	"github.com/nao1215/crawler/internal/model"
	"github.com/nao1215/crawler/internal/report"
)

// NewRootCmd creates the root command, which runs a crawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawler [flags] <url>...",
		Short: "Recursive web crawler that downloads the images it finds",
		Long: `crawler starts from one or more seed pages, follows their links up to a
depth limit and downloads every image it finds into a resource directory.

Each page and image is visited at most once per run. At most 512 requests
are in flight per host, and every request times out after 20 seconds.
Every run is recorded in a history database unless --no-history is given.

Examples:
  # Crawl a site with the default depth of 4
  crawler https://example.com/

  # Crawl two sites, two levels deep, saving images to ./images
  crawler -d 2 -o ./images https://example.com/ https://example.org/

  # Route requests through a SOCKS5 proxy and print a Markdown summary
  crawler -x 127.0.0.1:1080 --markdown https://example.com/`,
		Version:       getVersion(),
		Args:          cobra.MinimumNArgs(1),
		RunE:          runCrawlCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Recursion-depth limit; pages found at this depth are not followed")
	cmd.Flags().StringP("resource-dir", "o", config.DefaultResourceDir,
		"Directory receiving downloaded images")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crawler in current or home directory)")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().String("log-dir", "",
		"Directory for per-run log files (default: XDG state directory)")

	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCrawlCmd executes a crawl. Seeds are validated before anything else
// happens, so an invalid URL never opens a file or spawns a task.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	seeds, err := config.ParseSeeds(args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd, seeds)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog := setupLogger(cmd.ErrOrStderr(), cfg)
	defer closeLog()
	slog.SetDefault(logger)

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and cobra flags.
// Flags the user set explicitly win over the file.
func buildConfig(cmd *cobra.Command, seeds []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seeds = seeds
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()

	if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.ResourceDir, err = flags.GetString("resource-dir"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	for name, dst := range map[string]*string{"db-dir": &cfg.DBDir, "log-dir": &cfg.LogDir} {
		dir, err := flags.GetString(name)
		if err != nil {
			return nil, err
		}
		if dir != "" {
			*dst = dir
		}
	}

	// An explicit config path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file, flags.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// setupLogger creates the run logger. Records go to stderr and to a log
// file named after the start time; a log file that cannot be opened is
// reported and skipped.
func setupLogger(stderr io.Writer, cfg *config.Config) (*slog.Logger, func()) {
	if cfg.LogDir == "" {
		return clog.NewLogger(stderr, nil, cfg.Verbose), func() {}
	}

	f, err := clog.OpenLogFile(cfg.LogDir, time.Now())
	if err != nil {
		logger := clog.NewLogger(stderr, nil, cfg.Verbose)
		logger.Warn("log file disabled", "dir", cfg.LogDir, "error", err)
		return logger, func() {}
	}

	logger := clog.NewLogger(stderr, f, cfg.Verbose)
	logger.Debug("logging to file", "path", f.Name())
	return logger, func() { _ = f.Close() }
}

// runCrawl crawls cfg.Seeds and writes the summary to out.
func runCrawl(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	fetcherOpts, err := cfg.FetcherOptions()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	f, err := fetcher.New(append(fetcherOpts, fetcher.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	runID := uuid.NewString()
	store := crawler.NewDirStore(cfg.ResourceDir)
	opts := []crawler.Option{
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxHostVisits(cfg.MaxHostVisits),
		crawler.WithTaskTimeout(cfg.TaskTimeout),
		crawler.WithResourceStore(store),
		crawler.WithRunID(runID),
		crawler.WithLogger(logger),
	}

	var db *database.CrawlDB
	if cfg.SaveHistory {
		db = openHistory(ctx, cfg, runID, logger)
	}
	if db != nil {
		defer db.Close()
		opts = append(opts, crawler.WithRecorder(db.Recorder(runID)))
	}

	logger.Info("using resource directory", "dir", absPath(store.Dir()), "user_agent", f.UserAgent())

	summary, runErr := crawler.NewDispatcher(f, opts...).Run(ctx, cfg.Seeds)

	if db != nil {
		// The run context may be cancelled already; the summary must still land.
		if err := db.FinishRun(context.WithoutCancel(ctx), summary); err != nil {
			logger.Warn("failed to record crawl summary", "run_id", runID, "error", err)
		}
	}

	if err := writeReport(out, cfg, summary); err != nil {
		logger.Error("report failed", "error", err)
		if runErr == nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("crawl aborted: %w", runErr)
	}
	return nil
}

// openHistory opens the history database and records the run start.
// History is optional: on failure it logs a warning and returns nil.
func openHistory(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger) *database.CrawlDB {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("crawl history disabled", "dir", cfg.DBDir, "error", err)
		return nil
	}
	if err := db.StartRun(ctx, runID, cfg.Seeds, cfg.MaxDepth, time.Now()); err != nil {
		logger.Warn("crawl history disabled", "path", db.Path(), "error", err)
		_ = db.Close()
		return nil
	}
	logger.Debug("recording crawl history", "path", db.Path(), "run_id", runID)
	return db
}

// writeReport writes the summary in the requested format.
func writeReport(out io.Writer, cfg *config.Config, summary *model.CrawlSummary) error {
	if summary == nil {
		return errors.New("no crawl summary")
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
	_, err := w.Write(summary)
	return err
}

// absPath returns p made absolute for display, or p itself.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

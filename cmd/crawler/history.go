package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/crawler/internal/config"
	"github.com/nao1215/crawler/internal/database"
	"github.com/nao1215/crawler/internal/report"
)

// defaultHistoryLimit is how many runs "history" lists by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded crawl runs",
		Long: `History reads the crawl history database.

Without arguments it lists the most recent runs. With a run ID it shows
every page and resource visited by that run. With --digest it lists the
URLs that served a resource with the given SHA3-256 digest, across runs.

Examples:
  # List the 20 most recent runs
  crawler history

  # Show one run
  crawler history 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # Find where an image was seen before
  crawler history --digest 3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Number of runs to list (0 lists every run)")
	cmd.Flags().String("digest", "",
		"List the URLs of resources with this digest")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	digest, err := cmd.Flags().GetString("digest")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	if digest != "" && len(args) > 0 {
		return errors.New("--digest cannot be combined with a run ID")
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	w := report.NewHistoryWriter(cmd.OutOrStdout())

	switch {
	case digest != "":
		urls, err := db.FindResourcesByDigest(ctx, digest)
		if err != nil {
			return err
		}
		return w.WriteDigestMatches(digest, urls)

	case len(args) == 1:
		run, err := db.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		pages, err := db.PageVisits(ctx, run.ID)
		if err != nil {
			return err
		}
		resources, err := db.ResourceVisits(ctx, run.ID)
		if err != nil {
			return err
		}
		return w.WriteRun(run, pages, resources)

	default:
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return err
		}
		return w.WriteRuns(runs)
	}
}

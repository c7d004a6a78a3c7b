package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"kamishibai/internal/auth"
	"kamishibai/internal/history"
	"kamishibai/internal/ledger"
	"kamishibai/internal/notify"
	"kamishibai/internal/pipeline"
	"kamishibai/internal/preflight"
	"kamishibai/internal/publisher"
	"kamishibai/internal/storage"
	"kamishibai/internal/thumbnail"
	"kamishibai/internal/transcode"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int
	var dryRun bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Publish all unpublished recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// One run at a time; concurrent runs would hand out the same
			// publish slots.
			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "kamishibai.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another run is already in progress (lock: %s)", lock.Path())
			}
			defer func() {
				_ = lock.Unlock()
			}()

			if !skipPreflight && !dryRun {
				results := preflight.RunAll(ctx, cfg)
				printPreflight(cmd, results)
				if preflight.Failed(results) {
					return fmt.Errorf("preflight failed; fix the reported checks or pass --skip-preflight")
				}
			}

			store, err := storage.NewS3Store(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("connect to storage: %w", err)
			}

			var record ledger.Ledger
			switch cfg.Ledger.Backend {
			case "local":
				record = ledger.NewLocal(cfg.Ledger.LocalPath)
			default:
				record = ledger.NewRemote(store, cfg.Storage.LedgerKey)
			}

			deps := pipeline.Deps{
				Store:    store,
				Ledger:   record,
				Encoder:  transcode.New(cfg.FFmpegBinary(), logger),
				Renderer: thumbnail.New(cfg.Thumbnail, logger),
				Notifier: notify.NewService(cfg.Notifications),
				Logger:   logger,
			}

			if dryRun {
				deps.Publisher = unreachablePublisher{}
			} else {
				tokenSource, err := auth.TokenSource(ctx, cfg.YouTube)
				if err != nil {
					return err
				}
				uploader, err := publisher.NewYouTube(ctx, tokenSource, cfg.YouTube.ChunkSizeMiB, logger)
				if err != nil {
					return err
				}
				deps.Publisher = uploader

				hist, err := history.Open(cfg)
				if err != nil {
					return fmt.Errorf("open history store: %w", err)
				}
				defer hist.Close()
				deps.History = hist
			}

			runner, err := pipeline.New(cfg, deps)
			if err != nil {
				return err
			}

			summary, err := runner.Run(ctx, pipeline.RunOptions{Limit: limit, DryRun: dryRun})
			if err != nil {
				return err
			}

			printSummary(cmd, summary, dryRun)
			if summary.Failed > 0 || summary.Aborted {
				return fmt.Errorf("run finished with %d failed item(s)", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of recordings to publish (0 = no limit)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List planned publications without uploading")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before the run")
	return cmd
}

func printSummary(cmd *cobra.Command, summary pipeline.Summary, dryRun bool) {
	out := cmd.OutOrStdout()

	if len(summary.Items) == 0 {
		fmt.Fprintln(out, "Nothing to publish")
		return
	}

	rows := make([][]string, 0, len(summary.Items))
	for _, item := range summary.Items {
		detail := item.VideoID
		if item.Err != nil {
			detail = item.Err.Error()
		}
		rows = append(rows, []string{
			item.Title,
			string(item.Status),
			item.PublishAt,
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Status", "Publish At", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))

	if dryRun {
		fmt.Fprintf(out, "Dry run: %d recording(s) would be published\n", summary.Candidates)
		return
	}
	fmt.Fprintf(out, "Published %d, failed %d, %d total in ledger (run %s, %s)\n",
		summary.Published, summary.Failed, summary.TotalPublished,
		summary.RunID, summary.Duration.Round(time.Millisecond))
}

// unreachablePublisher satisfies the publisher dependency for dry runs, which
// never upload.
type unreachablePublisher struct{}

func (unreachablePublisher) Upload(context.Context, string, publisher.Video, func(float64)) (string, error) {
	return "", errors.New("dry run must not upload")
}

func (unreachablePublisher) SetThumbnail(context.Context, string, string) error {
	return errors.New("dry run must not attach thumbnails")
}

func printPreflight(cmd *cobra.Command, results []preflight.Result) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		state := "FAIL"
		if result.Passed {
			state = "ok"
		} else if result.Optional {
			state = "warn"
		}
		rows = append(rows, []string{result.Name, state, result.Detail})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Check", "State", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
}

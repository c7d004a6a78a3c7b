// Package pipeline orchestrates one publish run end to end.
//
// A run lists the bucket, filters to unpublished audio recordings, and moves
// each candidate through download, thumbnail rendering, transcoding, upload,
// thumbnail attachment, and ledger commit. Items are processed sequentially;
// one item's failure never stops the run unless the error is fatal for every
// remaining item, such as rejected credentials.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"kamishibai/internal/catalog"
	"kamishibai/internal/config"
	"kamishibai/internal/history"
	"kamishibai/internal/ledger"
	"kamishibai/internal/logging"
	"kamishibai/internal/notify"
	"kamishibai/internal/publisher"
	"kamishibai/internal/schedule"
	"kamishibai/internal/services"
	"kamishibai/internal/storage"
	"kamishibai/internal/titles"
)

// Status tracks how far an item progressed through the run.
type Status string

const (
	StatusPending           Status = "pending"
	StatusPlanned           Status = "planned"
	StatusDownloaded        Status = "downloaded"
	StatusThumbnailReady    Status = "thumbnail_ready"
	StatusTranscoded        Status = "transcoded"
	StatusUploaded          Status = "uploaded"
	StatusThumbnailAttached Status = "thumbnail_attached"
	StatusCommitted         Status = "committed"
	StatusFailed            Status = "failed"
)

// Encoder turns one audio file and one still image into a video file.
type Encoder interface {
	Transcode(ctx context.Context, audioPath, imagePath, outputPath string) error
}

// Renderer produces the title card image for one recording.
type Renderer interface {
	Render(title, outputPath string) error
}

// Deps carries the collaborators a Runner needs. History and Notifier are
// optional.
type Deps struct {
	Store     storage.ObjectStore
	Ledger    ledger.Ledger
	Publisher publisher.Publisher
	Encoder   Encoder
	Renderer  Renderer
	History   *history.Store
	Notifier  notify.Service
	Logger    *slog.Logger
}

// RunOptions adjusts a single run.
type RunOptions struct {
	// Limit caps how many candidates are processed. Zero means no cap.
	Limit int
	// DryRun lists the planned publications without side effects.
	DryRun bool
}

// ItemResult is the outcome for one candidate recording.
type ItemResult struct {
	Key       string
	Title     string
	Status    Status
	VideoID   string
	PublishAt string
	Err       error
}

// Summary aggregates one run. Published counts this run's commits;
// TotalPublished is the ledger cardinality after the run.
type Summary struct {
	RunID          string
	Candidates     int
	Published      int
	Failed         int
	TotalPublished int
	Aborted        bool
	Duration       time.Duration
	Items          []ItemResult
}

// Runner executes publish runs.
type Runner struct {
	cfg      *config.Config
	planner  schedule.Planner
	deps     Deps
	logger   *slog.Logger
	notifier notify.Service
}

// New validates the dependency set and builds a runner.
func New(cfg *config.Config, deps Deps) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if deps.Store == nil {
		return nil, errors.New("object store is nil")
	}
	if deps.Ledger == nil {
		return nil, errors.New("ledger is nil")
	}
	if deps.Publisher == nil {
		return nil, errors.New("publisher is nil")
	}
	if deps.Encoder == nil {
		return nil, errors.New("encoder is nil")
	}
	if deps.Renderer == nil {
		return nil, errors.New("renderer is nil")
	}

	planner, err := schedule.NewPlanner(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewService(config.Notifications{})
	}

	return &Runner{
		cfg:      cfg,
		planner:  planner,
		deps:     deps,
		logger:   logging.WithComponent(deps.Logger, "pipeline"),
		notifier: notifier,
	}, nil
}

// Run executes one publish run. The returned error covers setup failures
// only; per-item failures are reported through the summary.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	started := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	published, err := r.deps.Ledger.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load ledger: %w", err)
	}

	listing, err := r.deps.Store.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("list bucket: %w", err)
	}

	keys := catalog.Resolve(listing, r.cfg.IgnoreSet(), published)
	if opts.Limit > 0 && len(keys) > opts.Limit {
		keys = keys[:opts.Limit]
	}
	summary.Candidates = len(keys)

	logger.Info("run started",
		logging.Int("candidates", len(keys)),
		logging.Int("published_total", published.Len()),
		logging.Bool("dry_run", opts.DryRun))

	if len(keys) == 0 {
		summary.Duration = time.Since(started)
		logger.Info("nothing to publish")
		return summary, nil
	}

	if !opts.DryRun {
		if err := r.notifier.NotifyRunStarted(ctx, len(keys)); err != nil {
			logger.Warn("run start notification failed", logging.Error(err))
		}
	}

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			summary.Aborted = true
			break
		}

		var result ItemResult
		if opts.DryRun {
			result = r.planItem(key, published.Len()+i)
			logger.Info("would publish",
				logging.String(logging.FieldKey, result.Key),
				logging.String(logging.FieldTitle, result.Title),
				logging.String(logging.FieldPublishAt, result.PublishAt))
		} else {
			result = r.processItem(ctx, logger, summary.RunID, key, published)
		}
		summary.Items = append(summary.Items, result)

		switch result.Status {
		case StatusCommitted:
			summary.Published++
		case StatusFailed:
			summary.Failed++
		}

		if result.Err != nil && services.Fatal(result.Err) {
			logger.Error("aborting run", logging.Error(result.Err))
			if notifyErr := r.notifier.NotifyError(ctx, result.Err, "publish run"); notifyErr != nil {
				logger.Warn("error notification failed", logging.Error(notifyErr))
			}
			summary.Aborted = true
			break
		}
	}

	summary.TotalPublished = published.Len()
	summary.Duration = time.Since(started)
	logger.Info("run finished",
		logging.Int("published", summary.Published),
		logging.Int("total_published", summary.TotalPublished),
		logging.Int("failed", summary.Failed),
		logging.Bool("aborted", summary.Aborted),
		logging.Duration("duration", summary.Duration))

	if !opts.DryRun {
		if err := r.notifier.NotifyRunCompleted(ctx, summary.Published, summary.Failed, summary.Duration); err != nil {
			logger.Warn("run completion notification failed", logging.Error(err))
		}
	}
	return summary, nil
}

func (r *Runner) planItem(key string, slot int) ItemResult {
	title := titles.FromKey(key)
	return ItemResult{
		Key:       key,
		Title:     title,
		Status:    StatusPlanned,
		PublishAt: r.planner.PublishAt(slot),
	}
}

// processItem moves one recording through the full pipeline. The slot index
// is the current ledger cardinality, so earlier successes in the same run
// push later items to later slots.
func (r *Runner) processItem(ctx context.Context, logger *slog.Logger, runID, key string, published *ledger.Set) ItemResult {
	title := titles.FromKey(key)
	publishAt := r.planner.PublishAt(published.Len())
	result := ItemResult{Key: key, Title: title, Status: StatusPending, PublishAt: publishAt}

	itemLogger := logger.With(
		logging.String(logging.FieldKey, key),
		logging.String(logging.FieldTitle, title))
	itemLogger.Info("processing", logging.String(logging.FieldPublishAt, publishAt))

	var attemptID int64
	if r.deps.History != nil {
		id, err := r.deps.History.RecordStart(ctx, runID, key, title)
		if err != nil {
			itemLogger.Warn("history record failed", logging.Error(err))
		} else {
			attemptID = id
		}
	}
	finish := func(res ItemResult) ItemResult {
		if r.deps.History != nil && attemptID != 0 {
			message := ""
			if res.Err != nil {
				message = res.Err.Error()
			}
			if err := r.deps.History.RecordFinish(ctx, attemptID, string(res.Status), res.VideoID, res.PublishAt, message); err != nil {
				itemLogger.Warn("history update failed", logging.Error(err))
			}
		}
		return res
	}
	fail := func(err error) ItemResult {
		result.Status = StatusFailed
		result.Err = err
		itemLogger.Error("item failed",
			logging.String(logging.FieldStatus, string(StatusFailed)),
			logging.Error(err))
		return finish(result)
	}

	workDir, err := os.MkdirTemp(r.cfg.Paths.StagingDir, "item-")
	if err != nil {
		return fail(fmt.Errorf("create staging directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			itemLogger.Warn("staging cleanup failed", logging.Error(err))
		}
	}()

	audioPath := filepath.Join(workDir, path.Base(key))
	if err := r.deps.Store.Download(ctx, key, audioPath); err != nil {
		return fail(err)
	}
	result.Status = StatusDownloaded

	thumbnailPath := filepath.Join(workDir, "thumbnail.png")
	if err := r.deps.Renderer.Render(title, thumbnailPath); err != nil {
		return fail(err)
	}
	result.Status = StatusThumbnailReady

	videoPath := filepath.Join(workDir, "video.mp4")
	if err := r.deps.Encoder.Transcode(ctx, audioPath, thumbnailPath, videoPath); err != nil {
		return fail(err)
	}
	result.Status = StatusTranscoded

	video := publisher.Video{
		Title:         fmt.Sprintf(r.cfg.YouTube.TitleFormat, title),
		Description:   strings.ReplaceAll(r.cfg.YouTube.DescriptionTemplate, "{title}", title),
		Tags:          r.cfg.YouTube.Tags,
		CategoryID:    r.cfg.YouTube.CategoryID,
		PrivacyStatus: r.cfg.YouTube.PrivacyStatus,
		PublishAt:     publishAt,
		MadeForKids:   r.cfg.YouTube.MadeForKids,
	}
	lastReported := -10
	videoID, err := r.deps.Publisher.Upload(ctx, videoPath, video, func(fraction float64) {
		percent := int(fraction * 100)
		if percent/10 > lastReported/10 {
			lastReported = percent
			itemLogger.Debug("uploading", logging.Int("percent", percent))
		}
	})
	if err != nil {
		return fail(err)
	}
	result.Status = StatusUploaded
	result.VideoID = videoID
	itemLogger.Info("uploaded", logging.String(logging.FieldVideoID, videoID))

	// The video is live on the platform from here: a thumbnail failure fails
	// the item without a ledger commit, so the next run retries the whole
	// item and may produce a duplicate upload.
	if err := r.deps.Publisher.SetThumbnail(ctx, videoID, thumbnailPath); err != nil {
		return fail(err)
	}
	result.Status = StatusThumbnailAttached

	if err := r.deps.Ledger.Commit(ctx, key); err != nil {
		// The upload succeeded, so the key stays counted in memory for slot
		// accounting even though the durable write failed.
		itemLogger.Warn("ledger commit failed", logging.Error(err))
	}
	published.Add(key)
	result.Status = StatusCommitted

	itemLogger.Info("committed",
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldPublishAt, publishAt))
	if err := r.notifier.NotifyItemPublished(ctx, video.Title, publishAt); err != nil {
		itemLogger.Warn("publish notification failed", logging.Error(err))
	}
	return finish(result)
}

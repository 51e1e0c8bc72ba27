package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lqcli/internal/catalog"
	"lqcli/internal/config"
	"lqcli/internal/feed"
	"lqcli/internal/history"
	"lqcli/internal/logging"
	"lqcli/internal/services"
	"lqcli/internal/services/lingq"
)

const defaultRecentItems = 5

// Options tunes a Syncer.
type Options struct {
	// RecentItems bounds how many of the newest feed items are considered per source.
	RecentItems int
	// LinkOnly stops after link resolution; nothing is downloaded or published.
	LinkOnly bool
	// DefaultPrompt is used when a source has no post-processing prompt of its own.
	DefaultPrompt string
	// PostprocessingModel names the chat model used for transcript cleanup.
	PostprocessingModel string
	// RunID identifies the run in logs and history. Empty generates one.
	RunID string
}

// Deps bundles the collaborators a Syncer drives.
type Deps struct {
	Catalog     Catalog
	Feeds       FeedResolver
	Downloader  Downloader
	Transcriber Transcriber
	Recorder    Recorder
	Logger      *slog.Logger
}

// Syncer runs sources through resolution, dedup and hand-off.
type Syncer struct {
	catalog     Catalog
	feeds       FeedResolver
	downloader  Downloader
	transcriber Transcriber
	recorder    Recorder
	logger      *slog.Logger
	opts        Options
	now         func() time.Time
}

// New constructs a Syncer.
func New(deps Deps, opts Options) *Syncer {
	if opts.RecentItems <= 0 {
		opts.RecentItems = defaultRecentItems
	}
	if opts.DefaultPrompt == "" {
		opts.DefaultPrompt = config.DefaultPostprocessingPrompt
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Syncer{
		catalog:     deps.Catalog,
		feeds:       deps.Feeds,
		downloader:  deps.Downloader,
		transcriber: deps.Transcriber,
		recorder:    deps.Recorder,
		logger:      logging.NewComponentLogger(deps.Logger, "syncer"),
		opts:        opts,
		now:         time.Now,
	}
}

// RunID returns the identifier attached to this Syncer's logs and history.
func (s *Syncer) RunID() string {
	return s.opts.RunID
}

// Run syncs sources sequentially in the given order.
func (s *Syncer) Run(ctx context.Context, sources []*config.Source) RunReport {
	ctx = services.WithRunID(ctx, s.opts.RunID)
	report := RunReport{RunID: s.opts.RunID, Started: s.now()}
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("sync run started", logging.Int("sources", len(sources)), logging.Int("recent_items", s.opts.RecentItems))

	for _, src := range sources {
		report.Sources = append(report.Sources, s.SyncSource(ctx, src))
	}

	report.Finished = s.now()
	logger.Info("sync run finished",
		logging.Int("sources", len(report.Sources)),
		logging.Duration("elapsed", report.Finished.Sub(report.Started)),
	)
	return report
}

// SyncSource processes one source. It never returns early on item failures;
// feed failures end the source with zero items.
func (s *Syncer) SyncSource(ctx context.Context, src *config.Source) SourceReport {
	started := s.now()
	ctx = services.WithRunID(ctx, s.opts.RunID)
	ctx = services.WithSource(ctx, src.Name)
	report := SourceReport{Source: src.Name}
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("processing source",
		logging.String("url", src.URL),
		logging.String("content_type", string(src.ContentType)),
		logging.Uint64("course_id", src.CourseID),
	)

	snapshot, err := s.existingTitles(ctx, src)
	if err != nil {
		report.CatalogErr = err
		logging.WarnWithContext(logger, "could not read existing lessons; treating course as empty", "catalog_read_failed",
			logging.Error(err),
			logging.ErrorKind(services.KindLabel(err)),
			logging.String(logging.FieldErrorHint, "check lingq.api_key and the source course_id"),
			logging.String(logging.FieldImpact, "items already in the course may be published again"),
			logging.Alert("duplicate_risk"),
		)
	}

	resolveCtx := services.WithStage(ctx, "resolve")
	parsed, err := s.feeds.Resolve(resolveCtx, src.URL)
	if err != nil {
		report.Err = err
		report.Duration = s.now().Sub(started)
		logging.ErrorWithContext(logging.WithContext(resolveCtx, s.logger), "feed unavailable; skipping source", "feed_failed",
			logging.Error(err),
			logging.ErrorKind(services.KindLabel(err)),
			logging.String(logging.FieldErrorHint, "check the source url"),
		)
		s.record(ctx, src, ItemReport{Outcome: ItemFailed, Err: err})
		return report
	}

	for _, item := range parsed.Items(s.opts.RecentItems) {
		itemReport := s.processItem(ctx, src, item, snapshot)
		s.record(ctx, src, itemReport)
		report.Items = append(report.Items, itemReport)
	}

	report.Duration = s.now().Sub(started)
	linked, skipped, failed := report.Counts()
	logger.Info("source finished",
		logging.Int("linked", linked),
		logging.Int("skipped", skipped),
		logging.Int("failed", failed),
		logging.Int("published", report.Published()),
		logging.Duration("elapsed", report.Duration),
	)
	return report
}

func (s *Syncer) existingTitles(ctx context.Context, src *config.Source) (catalog.Snapshot, error) {
	if s.catalog == nil {
		return catalog.NewSnapshot(nil), services.Wrap(services.ErrConfiguration, "catalog", "", "no catalog client configured", nil)
	}
	titles, err := s.catalog.ListTitles(services.WithStage(ctx, "catalog"), src.Language, src.CourseID)
	if err != nil {
		return catalog.NewSnapshot(nil), err
	}
	return catalog.NewSnapshot(titles), nil
}

func (s *Syncer) processItem(ctx context.Context, src *config.Source, item feed.Item, snapshot catalog.Snapshot) ItemReport {
	title, ok := item.Title()
	if !ok {
		err := services.Wrap(services.ErrMissingTitle, "sync", "", fmt.Sprintf("%s item has no title", item.Kind()), nil)
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "item skipped: missing title", "item_missing_title",
			logging.ErrorKind(services.KindLabel(err)),
			logging.String(logging.FieldErrorHint, "the feed entry has no title to deduplicate on"),
			logging.String(logging.FieldImpact, "item not published"),
		)
		return ItemReport{Outcome: ItemFailed, Err: err}
	}

	ctx = services.WithItemTitle(ctx, title)
	logger := logging.WithContext(ctx, s.logger)
	report := ItemReport{Title: title, HasTitle: true}

	if snapshot.IsDuplicate(title) {
		logger.Info("item already published; skipping")
		report.Outcome = ItemSkipped
		return report
	}

	link, ok := feed.AudioLink(item, src.ContentType)
	if !ok {
		report.Outcome = ItemFailed
		report.Err = services.Wrap(services.ErrMissingLink, "sync", "", fmt.Sprintf("no %s link on %s item", src.ContentType.Label(), item.Kind()), nil)
		logging.WarnWithContext(logger, "item skipped: no audio link", "item_missing_link",
			logging.String("content_type", string(src.ContentType)),
			logging.ErrorKind(services.KindLabel(report.Err)),
			logging.String(logging.FieldErrorHint, "check the source content_type"),
			logging.String(logging.FieldImpact, "item not published"),
		)
		return report
	}

	report.Outcome = ItemLinked
	report.AudioLink = link
	logger.Info("audio link resolved", logging.String("audio_link", link))

	if s.opts.LinkOnly {
		return report
	}

	if err := s.Handoff(ctx, src, title, link, src.TranscriptVia); err != nil {
		report.HandoffErr = err
		logging.ErrorWithContext(logger, "handoff failed", "handoff_failed",
			logging.Error(err),
			logging.ErrorKind(services.KindLabel(err)),
			logging.String(logging.FieldErrorHint, handoffHint(err)),
		)
		return report
	}
	report.Published = true
	return report
}

// Handoff downloads link, prepares the lesson text according to transcriptVia,
// and publishes the lesson to src's course.
func (s *Syncer) Handoff(ctx context.Context, src *config.Source, title, link, transcriptVia string) error {
	switch transcriptVia {
	case config.TranscriptViaOpenAI:
		if s.transcriber == nil {
			return services.Wrap(services.ErrConfiguration, "transcribe", "", "no transcription client configured", nil)
		}
	case config.TranscriptViaLingQ:
	default:
		return services.Wrap(services.ErrUnsupported, "transcribe", "", fmt.Sprintf("transcript_via %q", transcriptVia), nil)
	}
	if s.downloader == nil || s.catalog == nil {
		return services.Wrap(services.ErrConfiguration, "handoff", "", "downloader and catalog are required", nil)
	}

	logger := logging.WithContext(ctx, s.logger)

	audio, err := s.downloader.Download(services.WithStage(ctx, "download"), link, src.DownloadMethod)
	if err != nil {
		return err
	}
	logger.Info("audio downloaded", logging.Int("bytes", len(audio)))

	var text string
	if transcriptVia == config.TranscriptViaOpenAI {
		stageCtx := services.WithStage(ctx, "transcribe")
		raw, err := s.transcriber.Transcribe(stageCtx, audio)
		if err != nil {
			return err
		}
		text, err = s.transcriber.Postprocess(stageCtx, raw, src.Prompt(s.opts.DefaultPrompt), s.opts.PostprocessingModel)
		if err != nil {
			return err
		}
		logger.Info("transcript ready", logging.Int("characters", len(text)))
	}

	err = s.catalog.CreateLesson(services.WithStage(ctx, "publish"), lingq.Lesson{
		CourseID: src.CourseID,
		Language: src.Language,
		Title:    title,
		Text:     text,
		Audio:    audio,
	})
	if err != nil {
		return err
	}
	logger.Info("lesson published", logging.Uint64("course_id", src.CourseID))
	return nil
}

func handoffHint(err error) string {
	switch services.Kind(err) {
	case services.ErrDownload:
		return "check that yt-dlp can fetch the link"
	case services.ErrTranscription:
		return "check openai.api_key and model settings"
	case services.ErrPublish:
		return "check lingq.api_key and the source course_id"
	case services.ErrUnsupported:
		return "set transcript_via to openai or lingq"
	default:
		return "check logs for details"
	}
}

func (s *Syncer) record(ctx context.Context, src *config.Source, item ItemReport) {
	if s.recorder == nil {
		return
	}
	entry := history.Entry{
		RunID:      s.opts.RunID,
		Source:     src.Name,
		ItemTitle:  item.Title,
		Outcome:    item.Outcome.String(),
		AudioLink:  item.AudioLink,
		RecordedAt: s.now(),
	}
	cause := item.Err
	if cause == nil {
		cause = item.HandoffErr
	}
	if cause != nil {
		entry.ErrorKind = services.KindLabel(cause)
		entry.ErrorMessage = cause.Error()
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "could not record outcome", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
			logging.String(logging.FieldImpact, "outcome missing from history"),
		)
	}
}

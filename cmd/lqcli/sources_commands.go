package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lqcli/internal/config"
	"lqcli/internal/download"
	"lqcli/internal/feed"
	"lqcli/internal/history"
	"lqcli/internal/logging"
	"lqcli/internal/notifications"
	"lqcli/internal/runlock"
	"lqcli/internal/services/lingq"
	"lqcli/internal/services/openai"
	"lqcli/internal/syncer"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List and sync configured sources",
	}
	cmd.AddCommand(newSourcesListCommand(ctx))
	cmd.AddCommand(newSourcesSyncCommand(ctx))
	return cmd
}

func newSourcesListCommand(ctx *commandContext) *cobra.Command {
	var tags []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			selected := cfg.FilteredSources(tags)
			out := cmd.OutOrStdout()
			if len(selected) == 0 {
				fmt.Fprintln(out, "No sources match")
				return nil
			}
			fmt.Fprintln(out, renderSourcesTable(selected))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Only include sources carrying any of these tags")
	return cmd
}

func newSourcesSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		tags      []string
		dryRun    bool
		limit     int
		linksOnly bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import new items from configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			selected := cfg.FilteredSources(tags)
			out := cmd.OutOrStdout()
			if len(selected) == 0 {
				fmt.Fprintln(out, "No sources match")
				return nil
			}
			if dryRun {
				fmt.Fprintln(out, "Dry run: the following sources would be synced")
				fmt.Fprintln(out, renderSourcesTable(selected))
				return nil
			}

			logger, err := ctx.logger(cfg)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			lock, err := acquireRunLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Release()

			recentItems := cfg.Sync.RecentItems
			if limit > 0 {
				recentItems = limit
			}

			deps := syncer.Deps{
				Catalog:    lingq.NewFromConfig(cfg),
				Feeds:      feed.NewResolver(feed.WithLogger(logger)),
				Downloader: download.NewFromConfig(cfg, download.WithLogger(logger)),
				Logger:     logger,
			}
			if cfg.UsesOpenAI() {
				deps.Transcriber = openai.NewFromConfig(cfg)
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				logging.WarnWithContext(logger, "history unavailable; outcomes will not be recorded", "history_open_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "lqcli history will not show this run"),
				)
			} else {
				defer store.Close()
				deps.Recorder = store
			}

			s := syncer.New(deps, syncer.Options{
				RecentItems:         recentItems,
				LinkOnly:            linksOnly,
				DefaultPrompt:       cfg.OpenAI.PostprocessingPrompt,
				PostprocessingModel: cfg.OpenAI.PostprocessingModel,
			})

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			if cfg.Sync.RunTimeoutSeconds > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, time.Duration(cfg.Sync.RunTimeoutSeconds)*time.Second)
				defer cancel()
			}

			report := s.Run(runCtx, selected)
			if linksOnly {
				fmt.Fprintln(out, renderLinksTable(report))
			}
			printSyncSummary(out, report, logger)
			notifySyncCompleted(cmd.Context(), notifications.NewService(cfg), report, logger)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Only sync sources carrying any of these tags")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Show the sources that would be synced and exit")
	cmd.Flags().IntVar(&limit, "limit", 0, "Override sync.recent_items for this run")
	cmd.Flags().BoolVar(&linksOnly, "links-only", false, "Resolve audio links without downloading or publishing")
	return cmd
}

func acquireRunLock(cfg *config.Config) (*runlock.Lock, error) {
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			return nil, fmt.Errorf("another lqcli run is in progress (lock %s)", cfg.LockPath())
		}
		return nil, err
	}
	return lock, nil
}

func renderSourcesTable(sources []*config.Source) string {
	headers := []string{"Name", "Type", "Download", "Language", "Course", "Tags", "Transcript"}
	rows := make([][]string, 0, len(sources))
	for _, src := range sources {
		rows = append(rows, []string{
			truncate(src.Name, 40),
			src.ContentType.Label(),
			string(src.DownloadMethod),
			src.Language,
			strconv.FormatUint(src.CourseID, 10),
			src.TagLabel(),
			src.TranscriptVia,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft})
}

func renderLinksTable(report syncer.RunReport) string {
	headers := []string{"Source", "Title", "Outcome", "Audio link"}
	var rows [][]string
	for _, src := range report.Sources {
		for _, item := range src.Items {
			title := item.Title
			if !item.HasTitle {
				title = "(untitled)"
			}
			link := item.AudioLink
			if item.Err != nil {
				link = item.Err.Error()
			}
			rows = append(rows, []string{
				truncate(src.Source, 30),
				truncate(title, 50),
				item.Outcome.String(),
				truncate(link, 80),
			})
		}
	}
	return renderTable(headers, rows, nil)
}

func printSyncSummary(out io.Writer, report syncer.RunReport, logger *slog.Logger) {
	headers := []string{"Source", "Items", "Linked", "Skipped", "Failed", "Published", "Status"}
	rows := make([][]string, 0, len(report.Sources))
	for _, src := range report.Sources {
		linked, skipped, failed := src.Counts()
		rows = append(rows, []string{
			truncate(src.Source, 40),
			strconv.Itoa(len(src.Items)),
			strconv.Itoa(linked),
			strconv.Itoa(skipped),
			strconv.Itoa(failed),
			strconv.Itoa(src.Published()),
			src.Status(),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}))

	colorize := shouldColorize(out)
	lines := make([]statusLine, 0, len(report.Sources))
	for _, src := range report.Sources {
		lines = append(lines, sourceStatus(src))
	}
	for _, line := range renderStatusBlock(lines, colorize) {
		fmt.Fprintln(out, line)
	}
	if report.Failed() {
		logger.Warn("sync finished with failed sources", logging.String(logging.FieldRunID, report.RunID))
	}
	fmt.Fprintf(out, "Run %s finished in %s\n", report.RunID, report.Finished.Sub(report.Started).Round(time.Millisecond))
}

func notifySyncCompleted(ctx context.Context, notifier notifications.Service, report syncer.RunReport, logger *slog.Logger) {
	summary := notifications.SyncSummary{
		Sources:  len(report.Sources),
		Duration: report.Finished.Sub(report.Started),
	}
	for _, src := range report.Sources {
		if src.Err != nil {
			summary.FailedSources++
		}
		_, _, failed := src.Counts()
		summary.FailedItems += failed
		summary.Published += src.Published()
	}
	if err := notifier.NotifySyncCompleted(ctx, summary); err != nil {
		logging.WarnWithContext(logger, "sync notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func firstLine(value string) string {
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return value[:idx]
	}
	return value
}

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lqcli/internal/config"
	"lqcli/internal/download"
	"lqcli/internal/language"
	"lqcli/internal/logging"
	"lqcli/internal/notifications"
	"lqcli/internal/services/lingq"
	"lqcli/internal/services/openai"
	"lqcli/internal/syncer"
)

func newAdhocCommand(ctx *commandContext) *cobra.Command {
	var (
		skipTranscribe bool
		methodFlag     string
	)
	cmd := &cobra.Command{
		Use:   "adhoc <url> <name> <language> <course_id>",
		Short: "Import a single link into a course",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			url := strings.TrimSpace(args[0])
			if url == "" {
				return errors.New("url must not be empty")
			}
			name := strings.TrimSpace(args[1])
			if name == "" {
				return errors.New("name must not be empty")
			}
			lang, err := language.Normalize(args[2])
			if err != nil {
				return err
			}
			courseID, err := strconv.ParseUint(strings.TrimSpace(args[3]), 10, 64)
			if err != nil || courseID == 0 {
				return fmt.Errorf("invalid course_id %q", args[3])
			}
			method, err := config.ParseDownloadMethod(methodFlag)
			if err != nil {
				return err
			}

			transcriptVia := config.TranscriptViaOpenAI
			if skipTranscribe {
				transcriptVia = config.TranscriptViaLingQ
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

			deps := syncer.Deps{
				Catalog:    lingq.NewFromConfig(cfg),
				Downloader: download.NewFromConfig(cfg, download.WithLogger(logger)),
				Logger:     logger,
			}
			if transcriptVia == config.TranscriptViaOpenAI {
				if cfg.OpenAI.APIKey == "" {
					return errors.New("openai.api_key is required to transcribe (or pass --skip-transcribe)")
				}
				deps.Transcriber = openai.NewFromConfig(cfg)
			}

			src := &config.Source{
				ContentType:    config.ContentTypeLink,
				DownloadMethod: method,
				URL:            url,
				Name:           name,
				CourseID:       courseID,
				Language:       lang,
				TranscriptVia:  transcriptVia,
			}
			s := syncer.New(deps, syncer.Options{
				DefaultPrompt:       cfg.OpenAI.PostprocessingPrompt,
				PostprocessingModel: cfg.OpenAI.PostprocessingModel,
			})
			notifier := notifications.NewService(cfg)
			if err := s.Handoff(cmd.Context(), src, name, url, transcriptVia); err != nil {
				if notifyErr := notifier.NotifyError(cmd.Context(), err, "adhoc import"); notifyErr != nil {
					logger.Warn("adhoc notification failed", logging.Error(notifyErr))
				}
				return err
			}
			if err := notifier.NotifyLessonPublished(cmd.Context(), "adhoc", name); err != nil {
				logging.WarnWithContext(logger, "adhoc notification failed", "notification_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q into course %d (%s)\n", name, courseID, language.DisplayName(lang))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&skipTranscribe, "skip-transcribe", "s", false, "Let LingQ generate the transcript instead of OpenAI")
	cmd.Flags().StringVarP(&methodFlag, "download-method", "m", string(config.DownloadYtDlp), "Download method (yt-dlp or http)")
	return cmd
}

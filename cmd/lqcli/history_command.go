package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lqcli/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No sync history")
				return nil
			}
			headers := []string{"When", "Source", "Title", "Outcome", "Error"}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				detail := entry.ErrorKind
				if entry.ErrorMessage != "" {
					detail = fmt.Sprintf("%s: %s", entry.ErrorKind, firstLine(entry.ErrorMessage))
				}
				rows = append(rows, []string{
					entry.RecordedAt.Local().Format("2006-01-02 15:04"),
					truncate(entry.Source, 30),
					truncate(entry.ItemTitle, 50),
					entry.Outcome,
					truncate(detail, 60),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

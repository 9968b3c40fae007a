package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/vigil/pkg/client"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the event timeline",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsGetCmd())

	return cmd
}

func newEventsListCmd() *cobra.Command {
	var (
		category string
		action   string
		sinceStr string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List timeline events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			opts := &client.TimelineListOptions{
				Category: category,
				Action:   action,
			}
			opts.Limit = limit
			if sinceStr != "" {
				t, err := time.Parse(time.RFC3339, sinceStr)
				if err != nil {
					return fmt.Errorf("invalid --since value, want RFC3339: %w", err)
				}
				opts.Since = &t
			}

			events, err := apiClient.Timeline().List(ctx, opts)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(events)
			}

			table := NewTable("ID", "TIME", "CATEGORY", "ACTION", "SUBJECT")
			for _, ev := range events {
				table.AddRow(
					ev.ID,
					ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
					ev.Category,
					ev.Action,
					truncate(ev.Subject, 50),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (file, input, session, system)")
	cmd.Flags().StringVar(&action, "action", "", "filter by action (e.g. file_modified)")
	cmd.Flags().StringVar(&sinceStr, "since", "", "only events at or after this RFC3339 time")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events to return")

	return cmd
}

func newEventsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := apiClient.Timeline().Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printOutput(ev)
		},
	}
}

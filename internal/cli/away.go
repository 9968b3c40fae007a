package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/vigil/pkg/client"
)

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func newAwayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "away",
		Short: "Manage away windows",
	}

	cmd.AddCommand(newAwayListCmd())
	cmd.AddCommand(newAwayAddCmd())
	cmd.AddCommand(newAwayRemoveCmd())

	return cmd
}

func newAwayListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List away windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			windows, err := apiClient.Settings().GetAwayWindows(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(windows)
			}

			table := NewTable("ID", "LABEL", "SPAN", "DAYS", "ENABLED")
			for _, w := range windows {
				span := fmt.Sprintf("%02d:%02d-%02d:%02d", w.StartHour, w.StartMinute, w.EndHour, w.EndMinute)
				table.AddRow(w.ID, w.Label, span, formatDays(w.Days), strconv.FormatBool(w.Enabled))
			}
			table.Render()
			return nil
		},
	}
}

func newAwayAddCmd() *cobra.Command {
	var (
		label string
		days  []int
	)

	cmd := &cobra.Command{
		Use:   "add <start> <end>",
		Short: "Add an away window (times as HH:MM, days Monday=0)",
		Long: `Add a recurring away window. Times are HH:MM on a 24 hour clock;
a start after the end wraps past midnight. Days use Monday=0 through
Sunday=6 and default to every day.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			startH, startM, err := parseClock(args[0])
			if err != nil {
				return err
			}
			endH, endM, err := parseClock(args[1])
			if err != nil {
				return err
			}

			if len(days) == 0 {
				days = []int{0, 1, 2, 3, 4, 5, 6}
			}
			for _, d := range days {
				if d < 0 || d > 6 {
					return fmt.Errorf("day out of range: %d (want 0-6, Monday=0)", d)
				}
			}

			windows, err := apiClient.Settings().GetAwayWindows(ctx)
			if err != nil {
				return err
			}
			windows = append(windows, client.AwayWindow{
				Label:       label,
				StartHour:   startH,
				StartMinute: startM,
				EndHour:     endH,
				EndMinute:   endM,
				Days:        days,
				Enabled:     true,
			})

			if _, err := apiClient.Settings().SetAwayWindows(ctx, windows); err != nil {
				return err
			}
			fmt.Printf("Away window %s-%s added\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "window label")
	cmd.Flags().IntSliceVar(&days, "days", nil, "days of week, Monday=0 (default all)")

	return cmd
}

func newAwayRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an away window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			windows, err := apiClient.Settings().GetAwayWindows(ctx)
			if err != nil {
				return err
			}

			kept := windows[:0]
			removed := false
			for _, w := range windows {
				if w.ID == args[0] {
					removed = true
					continue
				}
				kept = append(kept, w)
			}
			if !removed {
				return fmt.Errorf("no away window with id %q", args[0])
			}

			if _, err := apiClient.Settings().SetAwayWindows(ctx, kept); err != nil {
				return err
			}
			fmt.Println("Away window removed")
			return nil
		},
	}
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func formatDays(days []int) string {
	if len(days) == 7 {
		return "all"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(dayNames) {
			names = append(names, dayNames[d])
		}
	}
	return strings.Join(names, ",")
}

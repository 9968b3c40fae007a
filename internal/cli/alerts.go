package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/vigil/pkg/client"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Review and manage alerts",
	}

	cmd.AddCommand(newAlertsListCmd())
	cmd.AddCommand(newAlertsGetCmd())
	cmd.AddCommand(newAlertsAckCmd())
	cmd.AddCommand(newAlertsSnoozeCmd())

	return cmd
}

func newAlertsListCmd() *cobra.Command {
	var (
		severity   string
		activeOnly bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &client.AlertListOptions{
				Severity:   severity,
				ActiveOnly: activeOnly,
			}
			opts.Limit = limit

			alerts, err := apiClient.Alerts().List(context.Background(), opts)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(alerts)
			}

			table := NewTable("ID", "TIME", "SEVERITY", "ACK", "MESSAGE")
			for _, a := range alerts {
				table.AddRow(
					a.ID,
					a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					formatSeverity(a.Severity),
					strconv.FormatBool(a.Acknowledged),
					truncate(a.Message, 60),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (INFO, LOW, MEDIUM, HIGH, CRITICAL)")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only unacknowledged, unsnoozed alerts")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum alerts to return")

	return cmd
}

func newAlertsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient.Alerts().Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printOutput(a)
		},
	}
}

func newAlertsAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Alerts().Acknowledge(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Alert %s acknowledged\n", args[0])
			return nil
		},
	}
}

func newAlertsSnoozeCmd() *cobra.Command {
	var hours float64

	cmd := &cobra.Command{
		Use:   "snooze <id>",
		Short: "Snooze an alert for a number of hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Alerts().Snooze(context.Background(), args[0], hours)
			if err != nil {
				return err
			}
			fmt.Printf("Alert %s snoozed until %s\n", args[0], result.SnoozedUntil)
			return nil
		},
	}

	cmd.Flags().Float64Var(&hours, "hours", 1, "how long to snooze")

	return cmd
}

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show agent status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := apiClient.Status(ctx)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(st)
			}

			fmt.Println("Vigil Agent")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  Status:            %s\n", st.Status)
			fmt.Printf("  Uptime:            %s\n", (time.Duration(st.UptimeSeconds) * time.Second).String())
			fmt.Printf("  Events processed:  %d\n", st.EventsProcessed)
			fmt.Printf("  Alerts fired:      %d\n", st.AlertsFired)
			fmt.Printf("  Pending emails:    %d\n", st.PendingEmails)
			fmt.Printf("  Dashboard clients: %d\n", st.WebsocketClients)
			if st.AwayNow {
				fmt.Println("  Away window:       active")
			} else {
				fmt.Println("  Away window:       inactive")
			}
			return nil
		},
	}
}

package client_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pratik-mahalle/vigil/pkg/client"
)

// Example demonstrates basic usage of the Vigil client
func Example() {
	// Create a client against a locally running agent
	c := client.NewClient(client.Config{
		BaseURL: client.DefaultBaseURL,
	})

	ctx := context.Background()

	// Check the agent is up
	status, err := c.Status(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Agent up for %.0fs, %d events processed\n",
		status.UptimeSeconds, status.EventsProcessed)
}

// ExampleTimelineService_List demonstrates listing recent file system events
func ExampleTimelineService_List() {
	c := client.NewClient(client.Config{
		BaseURL: client.DefaultBaseURL,
	})

	since := time.Now().Add(-1 * time.Hour)
	events, err := c.Timeline().List(context.Background(), &client.TimelineListOptions{
		ListOptions: client.ListOptions{Limit: 50},
		Category:    "file_system",
		Since:       &since,
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, ev := range events {
		fmt.Printf("%s %s %s\n", ev.Timestamp.Format(time.RFC3339), ev.Action, ev.Target)
	}
}

// ExampleAlertService_List demonstrates listing active high-severity alerts
func ExampleAlertService_List() {
	c := client.NewClient(client.Config{
		BaseURL: client.DefaultBaseURL,
	})

	alerts, err := c.Alerts().List(context.Background(), &client.AlertListOptions{
		Severity:   "HIGH",
		ActiveOnly: true,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found %d active HIGH alerts\n", len(alerts))
	for _, a := range alerts {
		fmt.Printf("  - %s: %s\n", a.Severity, a.Message)
	}
}

// ExampleAlertService_Snooze demonstrates silencing an alert for two hours
func ExampleAlertService_Snooze() {
	c := client.NewClient(client.Config{
		BaseURL: client.DefaultBaseURL,
	})

	result, err := c.Alerts().Snooze(context.Background(), "a1b2c3d4e5f6", 2)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Snoozed until %s\n", result.SnoozedUntil)
}

// ExampleSettingsService_SetFolders demonstrates replacing the watched folder set
func ExampleSettingsService_SetFolders() {
	c := client.NewClient(client.Config{
		BaseURL: client.DefaultBaseURL,
	})

	folders, err := c.Settings().SetFolders(context.Background(), []client.MonitoredFolder{
		{Path: "/home/user/Documents", Recursive: true, Enabled: true},
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range folders {
		fmt.Printf("Watching %s (id %s)\n", f.Path, f.ID)
	}
}

// ExampleSettingsService_SetAwayWindows demonstrates configuring an
// overnight away window on weekdays
func ExampleSettingsService_SetAwayWindows() {
	c := client.NewClient(client.Config{
		BaseURL: client.DefaultBaseURL,
	})

	windows, err := c.Settings().SetAwayWindows(context.Background(), []client.AwayWindow{
		{
			Label:     "Work hours",
			StartHour: 9,
			EndHour:   17,
			Days:      []int{0, 1, 2, 3, 4}, // Monday through Friday
			Enabled:   true,
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Configured %d away windows\n", len(windows))
}

// ExampleClient_Health demonstrates checking agent health
func ExampleClient_Health() {
	c := client.NewClient(client.Config{
		BaseURL: client.DefaultBaseURL,
	})

	if err := c.Health(context.Background()); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Agent healthy")
}

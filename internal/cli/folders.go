package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/vigil/pkg/client"
)

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage monitored folders",
	}

	cmd.AddCommand(newFoldersListCmd())
	cmd.AddCommand(newFoldersAddCmd())
	cmd.AddCommand(newFoldersRemoveCmd())

	return cmd
}

func newFoldersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List monitored folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := apiClient.Settings().GetFolders(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(folders)
			}

			table := NewTable("ID", "PATH", "RECURSIVE", "ENABLED")
			for _, f := range folders {
				table.AddRow(f.ID, f.Path, strconv.FormatBool(f.Recursive), strconv.FormatBool(f.Enabled))
			}
			table.Render()
			return nil
		},
	}
}

func newFoldersAddCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a folder to the monitored set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			folders, err := apiClient.Settings().GetFolders(ctx)
			if err != nil {
				return err
			}
			for _, f := range folders {
				if f.Path == path {
					return fmt.Errorf("folder already monitored: %s", path)
				}
			}

			folders = append(folders, client.MonitoredFolder{
				Path:          path,
				Recursive:     recursive,
				Enabled:       true,
				WatchCreates:  true,
				WatchModifies: true,
				WatchDeletes:  true,
				WatchRenames:  true,
			})

			if _, err := apiClient.Settings().SetFolders(ctx, folders); err != nil {
				return err
			}
			fmt.Printf("Monitoring %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "watch subdirectories too")

	return cmd
}

func newFoldersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id-or-path>",
		Short: "Remove a folder from the monitored set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			folders, err := apiClient.Settings().GetFolders(ctx)
			if err != nil {
				return err
			}

			kept := folders[:0]
			removed := false
			for _, f := range folders {
				if f.ID == args[0] || f.Path == args[0] {
					removed = true
					continue
				}
				kept = append(kept, f)
			}
			if !removed {
				return fmt.Errorf("no monitored folder matches %q", args[0])
			}

			if _, err := apiClient.Settings().SetFolders(ctx, kept); err != nil {
				return err
			}
			fmt.Println("Folder removed")
			return nil
		},
	}
}

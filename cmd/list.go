package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Volume/snapshot selection (list command only)
	listVolumeID   uint64
	listVolumeName string
	listSnapshot   string

	// What to list (list-specific)
	listVolumes   bool
	listSnapshots bool
	listFiles     bool

	// Path options (list-specific)
	listPath      string
	listRecursive bool
)

var listCmd = &cobra.Command{
	Use:   "list [container-path]",
	Short: "List volumes, snapshots, or files",
	Long: `List contents of APFS containers.

Examples:
  # List all volumes
  go-apfs list /dev/disk2 --volumes

  # List files in specific volume
  go-apfs list /dev/disk2 --volume-name "Data" --files --path /Users

  # List snapshots
  go-apfs list /dev/disk2 --volume-id 1 --snapshots`,

	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runList(args[0]); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	// Volume/snapshot selection
	listCmd.Flags().Uint64Var(&listVolumeID, "volume-id", 0, "volume ID to list from")
	listCmd.Flags().StringVar(&listVolumeName, "volume-name", "", "volume name to list from")
	listCmd.Flags().StringVar(&listSnapshot, "snapshot", "", "snapshot to list from")

	// What to list (list-specific flags only)
	listCmd.Flags().BoolVar(&listVolumes, "volumes", false, "list volumes")
	listCmd.Flags().BoolVar(&listSnapshots, "snapshots", false, "list snapshots")
	listCmd.Flags().BoolVar(&listFiles, "files", false, "list files")

	// Path options (when listing files)
	listCmd.Flags().StringVarP(&listPath, "path", "p", "/", "path to list")
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false, "recursive listing")

	// Mutual exclusions
	listCmd.MarkFlagsMutuallyExclusive("volume-id", "volume-name")
}

func runList(containerPath string) error {
	fmt.Printf("📋 Listing contents of: %s\n", containerPath)

	// Show target selection
	if listVolumeName != "" {
		fmt.Printf("    Volume: %s\n", listVolumeName)
	} else if listVolumeID != 0 {
		fmt.Printf("    Volume ID: %d\n", listVolumeID)
	}
	if listSnapshot != "" {
		fmt.Printf("    Snapshot: %s\n", listSnapshot)
	}

	// Show what we're listing
	if listFiles {
		fmt.Printf("    Path: %s\n", listPath)
		if listRecursive {
			fmt.Println("    Recursive: true")
		}
	}

	// Default to listing volumes if no specific option given
	if !listVolumes && !listSnapshots && !listFiles {
		fmt.Println("└── Volumes (default):")
		listVolumes = true
	}

	if listVolumes {
		fmt.Println("└── Volume listing functionality will be implemented")
	}
	if listSnapshots {
		fmt.Println("└── Snapshot listing functionality will be implemented")
	}
	if listFiles {
		fmt.Println("└── File listing functionality will be implemented")
	}

	return nil
}

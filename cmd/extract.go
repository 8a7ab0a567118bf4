package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Source and destination (extract-specific)
	extractSource string
	extractDest   string

	// Extraction options (extract-specific)
	extractRecursive  bool
	preserveMetadata  bool
	preservePerms     bool
	overwriteExisting bool
	verifyExtraction  bool

	volumeName   string
	volumeID     uint64
	snapshotName string
)

var extractCmd = &cobra.Command{
	Use:   "extract [container-path]",
	Short: "Extract files, directories, or volumes",
	Long: `Extract files from APFS containers.

Examples:
  # Extract entire volume
  go-apfs extract /dev/disk2 --dest ./backup

  # Extract specific directory
  go-apfs extract /dev/disk2 --source /Users/alice --dest ./alice-backup --recursive`,

	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExtract(args[0]); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Source and destination (extract-specific flags only)
	extractCmd.Flags().StringVarP(&extractSource, "source", "s", "", "source path (default: entire volume)")
	extractCmd.Flags().StringVarP(&extractDest, "dest", "d", "", "destination path (required)")
	extractCmd.MarkFlagRequired("dest")

	// Extraction behavior
	extractCmd.Flags().BoolVarP(&extractRecursive, "recursive", "r", false, "extract recursively")
	extractCmd.Flags().BoolVar(&preserveMetadata, "preserve-metadata", true, "preserve metadata")
	extractCmd.Flags().BoolVar(&preservePerms, "preserve-perms", true, "preserve permissions")
	extractCmd.Flags().BoolVar(&overwriteExisting, "overwrite", false, "overwrite existing files")
	extractCmd.Flags().BoolVar(&verifyExtraction, "verify", false, "verify extraction integrity")
}

func runExtract(containerPath string) error {
	fmt.Printf("📦 Extracting from: %s\n", containerPath)

	// Show target selection (no flag sets volumeName/volumeID/snapshotName,
	// so these stay at their zero values and print nothing)
	if volumeName != "" {
		fmt.Printf("    Volume: %s\n", volumeName)
	} else if volumeID != 0 {
		fmt.Printf("    Volume ID: %d\n", volumeID)
	}
	if snapshotName != "" {
		fmt.Printf("    Snapshot: %s\n", snapshotName)
	}

	// Show extraction details
	if extractSource != "" {
		fmt.Printf("    Source: %s\n", extractSource)
	} else {
		fmt.Println("    Source: entire volume")
	}
	fmt.Printf("    Destination: %s\n", extractDest)

	fmt.Println("└── Extraction functionality will be implemented")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// devicePath is shared by the legacy inspection commands below (container,
// volume, snapshot, recover, crypto), which predate check and still take a
// raw device/image path via a persistent flag rather than a positional arg.
var devicePath string

func init() {
	rootCmd.PersistentFlags().StringVar(&devicePath, "device", "", "path to the device, disk image, or .dmg file (container/volume/snapshot/recover/crypto commands)")

	rootCmd.AddCommand(
		containerCmd,
		volumeCmd,
		snapshotCmd,
		recoverCmd,
		cryptoCmd,
	)
}

// Container Inspection Command
var containerCmd = &cobra.Command{
	Use:   "container",
	Short: "Inspect APFS container details",
	Run: func(cmd *cobra.Command, args []string) {
		containerInspect(devicePath)
	},
}

// Volume Inspection Command
var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Inspect volume metadata and details",
	Run: func(cmd *cobra.Command, args []string) {
		volumeInspect(devicePath)
	},
}

// Snapshot Command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage and inspect snapshots",
	Run: func(cmd *cobra.Command, args []string) {
		volume, _ := cmd.Flags().GetString("volume")
		listSnapshotsForVolume(volume)
	},
}

// Recovery Command
var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover deleted files from an APFS volume",
	Run: func(cmd *cobra.Command, args []string) {
		volume, _ := cmd.Flags().GetString("volume")
		filter, _ := cmd.Flags().GetString("filter")
		out, _ := cmd.Flags().GetString("out")
		recoveryOptions := RecoveryOptions{
			Volume:     volume,
			Filter:     filter,
			OutputPath: out,
			TimeFilter: "", // Could add timestamp filtering
			TypeFilter: "", // Could add file type filtering
		}
		recoverFiles(recoveryOptions)
	},
}

// Crypto Inspection Command
var cryptoCmd = &cobra.Command{
	Use:   "crypto",
	Short: "Inspect encryption metadata",
	Run: func(cmd *cobra.Command, args []string) {
		inspectCrypto(devicePath)
	},
}

func init() {
	// Flags for Snapshot Command
	snapshotCmd.Flags().String("volume", "", "Path to the APFS volume")
	snapshotCmd.MarkFlagRequired("volume")

	// Flags for Recover Command
	recoverCmd.Flags().String("volume", "", "Path to the APFS volume")
	recoverCmd.Flags().String("filter", "", "Filter for file recovery (e.g., '*.jpg')")
	recoverCmd.Flags().String("out", "./lost+found", "Output directory for recovered files")
	recoverCmd.MarkFlagRequired("volume")
}

// RecoveryOptions carries the parameters of a recover invocation.
type RecoveryOptions struct {
	Volume     string
	Filter     string
	OutputPath string
	TimeFilter string
	TypeFilter string
}

// Placeholder implementation functions with enhanced signatures
func containerInspect(devicePath string) {
	fmt.Printf("Inspecting APFS container at: %s\n", devicePath)
	// TODO: Implement container-level inspection
	// - Discover volumes
	// - Show container metadata
	// - List checkpoints
}

func volumeInspect(devicePath string) {
	fmt.Printf("Inspecting volumes at: %s\n", devicePath)
	// TODO: Implement volume-level metadata extraction
	// - Show volume roles
	// - Display volume flags
	// - Provide block size information
}

func listSnapshotsForVolume(volume string) {
	fmt.Printf("Listing snapshots for volume: %s\n", volume)
	// TODO: Implement snapshot listing
	// - Show available snapshots
	// - Display snapshot metadata
}

func recoverFiles(options RecoveryOptions) {
	fmt.Printf("Recovering files from %s (filter: %s, output: %s)\n",
		options.Volume, options.Filter, options.OutputPath)
	// TODO: Implement advanced file recovery
	// - Extent and inode-based scanning
	// - Support filtering by filename, path, time, type
	// - Dump to lost+found structure
}

func inspectCrypto(devicePath string) {
	fmt.Printf("Inspecting encryption metadata for: %s\n", devicePath)
	// TODO: Implement crypto metadata inspection
	// - Decode encryption state
	// - Inspect keybags
	// - Show protection classes
}

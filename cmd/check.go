package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-apfs/internal/btreecheck"
	"github.com/deploymenttheory/go-apfs/internal/parsers/volumes"
	"github.com/deploymenttheory/go-apfs/internal/services"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

var (
	checkXid           uint64
	checkReportUnknown bool
	checkFormat        string
)

var checkCmd = &cobra.Command{
	Use:   "check <device-or-image>",
	Short: "Walk and verify every B-tree in an APFS container",
	Long: `check drives the object map, file-system, extent-reference, and
snapshot-metadata B-trees of every volume in a container through the
structural checker, reporting the first corruption encountered.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Uint64Var(&checkXid, "xid", 0, "transaction id to check at (0 = the container's latest)")
	checkCmd.Flags().BoolVar(&checkReportUnknown, "report-unknown", true, "log unsupported-feature findings instead of silently skipping them")
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "report format: text|json (not read by check; output is always console text)")
}

// runCheck opens containerPath read-only and checks every volume it names.
// A *btreecheck.StructuralError returned from a volume check is fatal to the
// whole run: library code only returns these, cmd/ is where the process exit
// code is decided, without panicking deep inside a composable, testable
// library. A *btreecheck.UnsupportedFeatureError from a volume check is
// logged (with --report-unknown) and the run moves on to the next volume.
func runCheck(containerPath string) error {
	cr, err := services.NewContainerReader(containerPath)
	if err != nil {
		return fmt.Errorf("open container: %w", err)
	}
	defer cr.Close()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	if GetQuiet() {
		log = log.Level(zerolog.ErrorLevel)
	} else if GetVerbose() {
		log = log.Level(zerolog.DebugLevel)
	}

	nxSb := cr.GetSuperblock()
	xid := types.XidT(checkXid)
	if xid == 0 {
		xid = nxSb.NxO.OXid
	}

	checker := services.NewBtreeCheckerService(cr, log)

	log.Info().Str("container", containerPath).Uint64("xid", uint64(xid)).Msg("checking container object map")
	if err := checker.CheckObjectMap(nxSb.NxOmapOid, xid); err != nil {
		return err
	}

	containerOmap, err := btreecheck.ParseOmapBtree(btreecheck.NewContainerObjectReader(cr), cr.GetBlockSize(), nxSb.NxOmapOid, xid, btreecheck.NewLogReporter(log))
	if err != nil {
		return err
	}

	checked := 0
	for _, fsOid := range nxSb.NxFsOid {
		if fsOid == types.OidInvalid {
			continue
		}
		if err := checkVolume(checker, containerOmap, cr, fsOid, xid, log); err != nil {
			return err
		}
		checked++
	}

	log.Info().Int("volumes", checked).Msg("check complete")
	return nil
}

// checkVolume resolves one volume superblock through the container's
// object map, decodes it, and drives BtreeCheckerService over the four
// trees it names.
func checkVolume(checker *services.BtreeCheckerService, containerOmap *btreecheck.Btree, cr *services.ContainerReader, fsOid types.OidT, xid types.XidT, log zerolog.Logger) error {
	val, err := btreecheck.OmapLookup(containerOmap.Root, nil, fsOid, xid)
	if err != nil {
		return fmt.Errorf("resolve volume %d: %w", fsOid, err)
	}

	raw, err := cr.ReadBlock(uint64(val.OvPaddr))
	if err != nil {
		return fmt.Errorf("read volume superblock: %w", err)
	}

	vsr, err := volumes.NewVolumeSuperblockReader(raw, cr.GetEndianness())
	if err != nil {
		return fmt.Errorf("parse volume superblock: %w", err)
	}
	vsb := vsr.GetSuperblock()

	log.Info().Uint64("volume_oid", uint64(fsOid)).Str("name", volumeName8(vsb)).Msg("checking volume")

	oids := services.VolumeTreeOids{
		OmapOid:       vsb.ApfsOmapOid,
		RootTreeOid:   vsb.ApfsRootTreeOid,
		ExtentrefOid:  vsb.ApfsExtentrefTreeOid,
		SnapMetaOid:   vsb.ApfsSnapMetaTreeOid,
		Xid:           xid,
		CaseSensitive: vsb.ApfsIncompatibleFeatures&types.ApfsIncompatCaseInsensitive == 0,
	}

	if err := checker.CheckVolume(oids); err != nil {
		if unknown, ok := err.(*btreecheck.UnsupportedFeatureError); ok {
			if checkReportUnknown {
				log.Warn().Err(unknown).Uint64("volume_oid", uint64(fsOid)).Msg("unsupported feature")
			}
			return nil
		}
		return err
	}
	return nil
}

func volumeName8(vsb *types.ApfsSuperblockT) string {
	n := 0
	for n < len(vsb.ApfsVolname) && vsb.ApfsVolname[n] != 0 {
		n++
	}
	return string(vsb.ApfsVolname[:n])
}

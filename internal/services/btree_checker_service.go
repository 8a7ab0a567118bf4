package services

import (
	"github.com/deploymenttheory/go-apfs/internal/btreecheck"
	"github.com/deploymenttheory/go-apfs/internal/types"
	"github.com/rs/zerolog"
)

// VolumeTreeOids names the object ids a volume superblock carries for the
// three logically-addressed trees a full check walks, alongside the
// transaction id they should be read at. Callers obtain these from an
// already-parsed volume superblock; this service does not parse volume
// superblocks itself.
type VolumeTreeOids struct {
	OmapOid       types.OidT
	RootTreeOid   types.OidT
	ExtentrefOid  types.OidT
	SnapMetaOid   types.OidT
	Xid           types.XidT
	CaseSensitive bool
}

// BtreeCheckerService wires a container's raw block access into the four
// B-tree entry points and drives a full structural check of one volume.
type BtreeCheckerService struct {
	reader    btreecheck.ObjectReader
	blockSize uint32
	log       zerolog.Logger
}

// NewBtreeCheckerService adapts an already-open ContainerReader for use by
// the checker.
func NewBtreeCheckerService(cr *ContainerReader, log zerolog.Logger) *BtreeCheckerService {
	return &BtreeCheckerService{
		reader:    btreecheck.NewContainerObjectReader(cr),
		blockSize: cr.GetBlockSize(),
		log:       log,
	}
}

// CheckVolume parses and verifies the object map, file-system (catalog),
// extent reference, and snapshot metadata trees for one volume, in that
// order, stopping at the first structural error.
func (s *BtreeCheckerService) CheckVolume(oids VolumeTreeOids) error {
	reporter := btreecheck.NewLogReporter(s.log)

	omapTree, err := btreecheck.ParseOmapBtree(s.reader, s.blockSize, oids.OmapOid, oids.Xid, reporter)
	if err != nil {
		return err
	}
	if err := omapTree.Check(); err != nil {
		return err
	}

	names := btreecheck.NameComparer(btreecheck.UnicodeNameComparer{CaseInsensitive: !oids.CaseSensitive})

	catTree, err := btreecheck.ParseCatBtree(s.reader, s.blockSize, oids.RootTreeOid, oids.Xid, omapTree.Root, names, reporter)
	if err != nil {
		return err
	}
	if err := catTree.Check(); err != nil {
		return err
	}

	extentrefTree, err := btreecheck.ParseExtentrefBtree(s.reader, s.blockSize, oids.ExtentrefOid, oids.Xid, reporter)
	if err != nil {
		return err
	}
	if err := extentrefTree.Check(); err != nil {
		return err
	}

	snapMetaTree, err := btreecheck.ParseSnapMetaBtree(s.reader, s.blockSize, oids.SnapMetaOid, oids.Xid, omapTree.Root, reporter)
	if err != nil {
		if _, unsupported := err.(*btreecheck.UnsupportedFeatureError); unsupported {
			s.log.Warn().Err(err).Msg("skipping unsupported snapshot metadata tree")
			return nil
		}
		return err
	}
	return snapMetaTree.Check()
}

// CheckObjectMap verifies only a container-level object map (e.g. the
// container's own, rather than a volume's), useful when a caller wants to
// validate the container superblock's omap before descending into volumes.
func (s *BtreeCheckerService) CheckObjectMap(omapOid types.OidT, xid types.XidT) error {
	reporter := btreecheck.NewLogReporter(s.log)
	tree, err := btreecheck.ParseOmapBtree(s.reader, s.blockSize, omapOid, xid, reporter)
	if err != nil {
		return err
	}
	return tree.Check()
}

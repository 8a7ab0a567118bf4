package btreecheck

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// omapTreeOidOffset is the byte offset of omap_phys_t.om_tree_oid within its
// block: 32 (obj_phys_t) + 16 (om_flags, om_snap_count, om_tree_type,
// om_snapshot_tree_type), matching internal/types/object_maps.go's OmapPhysT
// field layout.
const omapTreeOidOffset = 48

// ParseOmapBtree is the C7 entry point for an object map: it reads the
// omap_phys_t object at omapOid, extracts the physically-addressed B-tree
// root it names, and returns a Btree ready for Check.
func ParseOmapBtree(reader ObjectReader, blockSize uint32, omapOid types.OidT, xid types.XidT, reporter Reporter) (*Btree, error) {
	blockNr := uint64(omapOid)
	raw, err := reader.ReadBlock(blockNr)
	if err != nil {
		return nil, structuralErrorf("tree entry point", blockNr, "failed to read object map: %v", err)
	}
	_, obj, err := readObjectHeader(raw, blockNr)
	if err != nil {
		return nil, err
	}
	if obj.Type != types.ObjectTypeOmap {
		return nil, structuralErrorf("tree entry point", blockNr, "object %d is not an object map: type=0x%x", omapOid, obj.Type)
	}
	if obj.Subtype != 0 {
		return nil, structuralErrorf("tree entry point", blockNr, "object map %d has a non-zero subtype: 0x%x", omapOid, obj.Subtype)
	}
	if len(raw) < omapTreeOidOffset+8 {
		return nil, structuralErrorf("tree entry point", blockNr, "object map block too small")
	}
	treeOid := types.OidT(binary.LittleEndian.Uint64(raw[omapTreeOidOffset : omapTreeOidOffset+8]))

	t := &Btree{Kind: KindOmap, reader: reader, blockSize: blockSize, xid: xid, reporter: reporter}
	root, err := t.readNode(treeOid, xid)
	if err != nil {
		return nil, err
	}
	t.Root = root
	return t, nil
}

// ParseCatBtree is the C7 entry point for a volume's file-system tree
// (fstree): logically addressed, so it carries the volume's object map
// root for virtual-oid translation.
func ParseCatBtree(reader ObjectReader, blockSize uint32, fsTreeOid types.OidT, xid types.XidT, omapRoot *Node, names NameComparer, reporter Reporter) (*Btree, error) {
	t := &Btree{Kind: KindCatalog, reader: reader, blockSize: blockSize, xid: xid, OmapRoot: omapRoot, names: names, reporter: reporter}
	root, err := t.readNode(fsTreeOid, xid)
	if err != nil {
		return nil, err
	}
	t.Root = root
	return t, nil
}

// ParseExtentrefBtree is the C7 entry point for a volume's physical extent
// reference tree (blockreftree): physically addressed.
func ParseExtentrefBtree(reader ObjectReader, blockSize uint32, extentrefOid types.OidT, xid types.XidT, reporter Reporter) (*Btree, error) {
	t := &Btree{Kind: KindExtentref, reader: reader, blockSize: blockSize, xid: xid, reporter: reporter}
	root, err := t.readNode(extentrefOid, xid)
	if err != nil {
		return nil, err
	}
	t.Root = root
	return t, nil
}

// ParseSnapMetaBtree is the C7 entry point for a volume's snapshot metadata
// tree: logically addressed, expected to be a single empty leaf-and-root
// node (spec.md Non-goals exclude populated snapshot metadata support).
func ParseSnapMetaBtree(reader ObjectReader, blockSize uint32, snapMetaOid types.OidT, xid types.XidT, omapRoot *Node, reporter Reporter) (*Btree, error) {
	t := &Btree{Kind: KindSnapMeta, reader: reader, blockSize: blockSize, xid: xid, OmapRoot: omapRoot, reporter: reporter}
	root, err := t.readNode(snapMetaOid, xid)
	if err != nil {
		return nil, err
	}
	t.Root = root
	return t, nil
}

// Check drives the Subtree Walker and Footer Checker over the whole tree
// from its root. Catalog trees carry a 256-byte name buffer so a leaf's
// borrowed dentry/xattr Name survives past the node that held it.
func (t *Btree) Check() error {
	cur := &walkCursor{}
	if t.Kind == KindCatalog {
		cur.nameBuf = make([]byte, 256)
	}
	if err := t.walk(t.Root, 0, cur); err != nil {
		return err
	}
	return t.checkFooter()
}

package btreecheck

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// readNode is the Node Reader (C1). It resolves oid to a physical block
// (through the owning Btree's omap root for logical trees, directly for
// physical trees), reads and checksum-verifies that block, parses the fixed
// node header, computes the four area offsets, and allocates the four
// bitmaps, populating the two free bitmaps by walking the on-disk free
// lists (§4.3). Used bitmaps are zeroed here and filled later by the
// Subtree Walker (C4) as it visits records.
func (t *Btree) readNode(oid types.OidT, xid types.XidT) (*Node, error) {
	blockNr, err := t.resolveBlock(oid, xid)
	if err != nil {
		return nil, err
	}

	raw, err := t.reader.ReadBlock(blockNr)
	if err != nil {
		return nil, structuralErrorf("B-tree", blockNr, "failed to read node block: %v", err)
	}

	_, obj, err := readObjectHeader(raw, blockNr)
	if err != nil {
		return nil, err
	}

	pers := personalityFor(t.Kind)
	if len(raw) < nodeHeaderSize {
		return nil, structuralErrorf("B-tree", blockNr, "block too small for node header")
	}

	flags := binary.LittleEndian.Uint16(raw[32:34])
	isRootNode := flags&types.BtnodeRoot != 0

	wantType := pers.nonRootType
	if isRootNode {
		wantType = pers.rootType
	}
	if obj.Type != wantType || obj.Subtype != pers.subtype {
		return nil, structuralErrorf("B-tree", blockNr,
			"object type/subtype mismatch for %s: got type=0x%x subtype=0x%x", t.Kind, obj.Type, obj.Subtype)
	}

	node := &Node{
		Btree:  t,
		Object: obj,
		raw:    raw,
		buf:    raw[nodeHeaderSize:],
	}

	if err := node.parseHeader(flags, raw, blockNr, t.blockSize); err != nil {
		return nil, err
	}

	if err := node.parseFreeLists(blockNr); err != nil {
		return nil, err
	}

	node.UsedKeyBmap = make([]bool, node.Free-node.Key)
	node.UsedValBmap = make([]bool, node.AreaEnd-node.Data)

	return node, nil
}

// resolveBlock implements read_object's logical/physical split: physical
// trees (OMAP, EXTENTREF; any tree with a nil OmapRoot) address nodes
// directly by oid as a block number. Logical trees translate oid through
// the owning Btree's object map at the tree's transaction id.
func (t *Btree) resolveBlock(oid types.OidT, xid types.XidT) (uint64, error) {
	if t.OmapRoot == nil {
		return uint64(oid), nil
	}
	val, err := OmapLookup(t.OmapRoot, t.names, oid, xid)
	if err != nil {
		return 0, err
	}
	return uint64(val.OvPaddr), nil
}

// parseHeader decodes the 24-byte node header and computes the four
// monotonically ordered area offsets, verifying Invariants 1-5.
func (n *Node) parseHeader(flags uint16, raw []byte, blockNr uint64, blockSize uint32) error {
	// Invariant 1 / Open Question 3: only ROOT, LEAF, FIXED_KV_SIZE are
	// legal; CHECK_KOFF_INVAL and any other bit, even though defined
	// elsewhere, is rejected here as structural corruption.
	const validMask = types.BtnodeRoot | types.BtnodeLeaf | types.BtnodeFixedKvSize
	if flags&^uint16(validMask) != 0 {
		return structuralErrorf("B-tree", blockNr, "node flags contain undefined or disallowed bits: 0x%04x", flags)
	}

	n.Flags = flags
	n.Level = binary.LittleEndian.Uint16(raw[34:36])
	n.Records = binary.LittleEndian.Uint32(raw[36:40])

	tocOff := int(binary.LittleEndian.Uint16(raw[40:42]))
	tocLen := int(binary.LittleEndian.Uint16(raw[42:44]))
	freeOff := int(binary.LittleEndian.Uint16(raw[44:46]))
	freeLen := int(binary.LittleEndian.Uint16(raw[46:48]))
	n.KeyFreeListLen = int(binary.LittleEndian.Uint16(raw[50:52]))
	n.ValFreeListLen = int(binary.LittleEndian.Uint16(raw[54:56]))

	// Invariant 2: either root, or records > 0.
	if !n.IsRoot() && n.Records == 0 {
		return structuralErrorf("B-tree", blockNr, "non-root node has zero records")
	}

	n.Toc = tocOff
	// Invariant 3: toc == sizeof(NodeHeader). Measured relative to the
	// start of btn_data (the convention internal/types/btree.go's
	// BtnTableSpace doc comment already documents), this means toc == 0.
	if n.Toc != 0 {
		return structuralErrorf("B-tree", blockNr, "table of contents does not start at the beginning of node data: toc=%d", n.Toc)
	}

	n.Key = n.Toc + tocLen
	n.Free = n.Key + freeOff
	n.Data = n.Free + freeLen

	footerLen := 0
	if n.IsRoot() {
		footerLen = infoFooterSize
	}
	n.AreaEnd = len(n.buf) - footerLen

	// Invariant 4: data <= blocksize - (root ? sizeof(InfoFooter) : 0).
	if n.Data > n.AreaEnd {
		return structuralErrorf("B-tree", blockNr, "value heap start exceeds usable area: data=%d area_end=%d", n.Data, n.AreaEnd)
	}
	if n.Toc > n.Key || n.Key > n.Free || n.Free > n.Data {
		return structuralErrorf("B-tree", blockNr, "node offsets are not monotonically ordered: toc=%d key=%d free=%d data=%d",
			n.Toc, n.Key, n.Free, n.Data)
	}
	if n.Data < 0 || n.AreaEnd > len(n.buf) || n.AreaEnd < 0 {
		return structuralErrorf("B-tree", blockNr, "node area offsets out of bounds")
	}

	// Invariant 5: records * entry_stride <= key - toc.
	if int(n.Records)*n.EntryStride() > n.Key-n.Toc {
		return structuralErrorf("B-tree", blockNr,
			"table of contents too large for declared record count: records=%d stride=%d toc_area=%d",
			n.Records, n.EntryStride(), n.Key-n.Toc)
	}

	return nil
}

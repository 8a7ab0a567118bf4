package btreecheck

import (
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// extentKeyBytes encodes a phys_ext key: an obj_id_and_type prefix whose id
// is the extent's starting physical block number.
func extentKeyBytes(startBlock uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, (startBlock&objIDMask)|(uint64(types.ApfsTypeExtent)<<objTypeShift))
	return b
}

// physExtValBytes encodes a minimal j_phys_ext_val_t: blockCount blocks,
// owning object id ownerID, refcnt 1.
func physExtValBytes(blockCount, ownerID uint64) []byte {
	b := make([]byte, minPhysExtRecordSize)
	binary.LittleEndian.PutUint64(b[0:8], blockCount)
	binary.LittleEndian.PutUint64(b[8:16], ownerID)
	binary.LittleEndian.PutUint32(b[16:20], 1)
	return b
}

// variableKVNodeSpec describes one variable-kv (catalog/extentref
// personality) single-level node: records packed tightly so the default
// empty free lists are already correct, mirroring fixedKVNodeSpec's
// simplifying assumptions.
type variableKVNodeSpec struct {
	blockNr   uint64
	blockSize int
	isRoot    bool
	isLeaf    bool
	level     uint16
	xid       uint64
	subtype   uint32
	keys      [][]byte
	values    [][]byte
}

func buildVariableKVNode(spec variableKVNodeSpec) []byte {
	raw := make([]byte, spec.blockSize)

	flags := uint16(0)
	if spec.isRoot {
		flags |= types.BtnodeRoot
	}
	if spec.isLeaf {
		flags |= types.BtnodeLeaf
	}

	n := len(spec.keys)
	const tocStride = 8
	tocLen := n * tocStride

	keyOffs := make([]int, n)
	keyAreaLen := 0
	for i, k := range spec.keys {
		keyOffs[i] = keyAreaLen
		keyAreaLen += len(k)
	}
	freeOff := keyAreaLen
	freeLen := 0
	dataStart := tocLen + freeOff + freeLen

	footerLen := 0
	if spec.isRoot {
		footerLen = infoFooterSize
	}
	buf := raw[nodeHeaderSize:]
	areaEnd := len(buf) - footerLen
	areaLen := areaEnd - dataStart

	valOffs := make([]int, n)
	cum := 0
	for i, v := range spec.values {
		cum += len(v)
		valOffs[i] = cum
	}

	binary.LittleEndian.PutUint16(raw[32:34], flags)
	binary.LittleEndian.PutUint16(raw[34:36], spec.level)
	binary.LittleEndian.PutUint32(raw[36:40], uint32(n))
	binary.LittleEndian.PutUint16(raw[40:42], 0)
	binary.LittleEndian.PutUint16(raw[42:44], uint16(tocLen))
	binary.LittleEndian.PutUint16(raw[44:46], uint16(freeOff))
	binary.LittleEndian.PutUint16(raw[46:48], uint16(freeLen))
	binary.LittleEndian.PutUint16(raw[48:50], invalidOff)
	binary.LittleEndian.PutUint16(raw[50:52], 0)
	binary.LittleEndian.PutUint16(raw[52:54], invalidOff)
	binary.LittleEndian.PutUint16(raw[54:56], 0)

	for i := 0; i < n; i++ {
		entryOff := nodeHeaderSize + i*tocStride
		klen := len(spec.keys[i])
		vlen := len(spec.values[i])
		binary.LittleEndian.PutUint16(raw[entryOff:entryOff+2], uint16(keyOffs[i]))
		binary.LittleEndian.PutUint16(raw[entryOff+2:entryOff+4], uint16(klen))
		binary.LittleEndian.PutUint16(raw[entryOff+4:entryOff+6], uint16(valOffs[i]))
		binary.LittleEndian.PutUint16(raw[entryOff+6:entryOff+8], uint16(vlen))

		copy(buf[tocLen+keyOffs[i]:tocLen+keyOffs[i]+klen], spec.keys[i])

		vOff := dataStart + (areaLen - valOffs[i])
		copy(buf[vOff:vOff+vlen], spec.values[i])
	}

	if spec.isRoot {
		f := raw[len(raw)-infoFooterSize:]
		binary.LittleEndian.PutUint32(f[0:4], 0)
		binary.LittleEndian.PutUint32(f[4:8], uint32(spec.blockSize))
		binary.LittleEndian.PutUint32(f[8:12], 0)
		binary.LittleEndian.PutUint32(f[12:16], 0)
		binary.LittleEndian.PutUint32(f[16:20], extrefKeySize)
		binary.LittleEndian.PutUint32(f[20:24], extrefValSize)
		binary.LittleEndian.PutUint64(f[24:32], uint64(n))
		binary.LittleEndian.PutUint64(f[32:40], 1)
	}

	putObjHeader(raw, spec.blockNr, spec.xid, types.ObjectTypeBtreeNode, spec.subtype)
	if spec.isRoot {
		binary.LittleEndian.PutUint32(raw[24:28], types.ObjectTypeBtree)
	}
	stampChecksum(raw)
	return raw
}

// TestExtentrefLookup_FindsMatch guards against the bug where a zero-value
// Key.Type in the search key made every genuine extentref match compare
// unequal to the record actually on disk (every on-disk phys_ext key
// carries type APFS_TYPE_EXTENT, never zero).
func TestExtentrefLookup_FindsMatch(t *testing.T) {
	const rootOid = 7
	values := [][]byte{
		physExtValBytes(4, 900),
		physExtValBytes(4, 901),
		physExtValBytes(4, 902),
	}
	keys := [][]byte{
		extentKeyBytes(100),
		extentKeyBytes(200),
		extentKeyBytes(300),
	}
	n := len(keys)
	size := 0
	for i := range keys {
		size += len(keys[i]) + len(values[i])
	}
	blockSize := nodeHeaderSize + n*8 + size + infoFooterSize

	root := buildVariableKVNode(variableKVNodeSpec{
		blockNr:   rootOid,
		blockSize: blockSize,
		isRoot:    true,
		isLeaf:    true,
		xid:       1,
		subtype:   uint32(types.ObjectTypeBlockreftree),
		keys:      keys,
		values:    values,
	})

	reader := newMemObjectReader(uint32(blockSize))
	reader.blocks[rootOid] = root

	tree, err := ParseExtentrefBtree(reader, uint32(blockSize), types.OidT(rootOid), types.XidT(1), nil)
	if err != nil {
		t.Fatalf("ParseExtentrefBtree: %v", err)
	}

	key, value, err := ExtentrefLookup(tree.Root, nil, 200)
	if err != nil {
		t.Fatalf("ExtentrefLookup(200): %v", err)
	}
	if key.ID != 200 {
		t.Fatalf("expected matched key id 200, got %d", key.ID)
	}
	if binary.LittleEndian.Uint64(value[8:16]) != 901 {
		t.Fatalf("expected owning object id 901, got %d", binary.LittleEndian.Uint64(value[8:16]))
	}
}

// TestQuery_NodeNextEagainAtIndexZero exercises node_next's EAGAIN signal
// directly: a cursor already parked at a node's first record has nowhere
// further back to step.
func TestQuery_NodeNextEagainAtIndexZero(t *testing.T) {
	const omapOid, rootOid = 10, 5
	blockSize := minimalRootBlockSize(1, 16)

	root := buildFixedKVNode(fixedKVNodeSpec{
		blockNr:   rootOid,
		blockSize: blockSize,
		isRoot:    true,
		isLeaf:    true,
		xid:       1,
		keys: [][]byte{
			omapKeyBytes(100, 1),
		},
		values: [][]byte{
			omapValBytes(0, uint32(blockSize), 200),
		},
	})
	setFooterCounts(root, 1, 1)

	reader := newMemObjectReader(uint32(blockSize))
	reader.blocks[omapOid] = buildOmapPhys(omapOid, rootOid)
	reader.blocks[rootOid] = root

	tree, err := ParseOmapBtree(reader, uint32(blockSize), types.OidT(omapOid), types.XidT(1), nil)
	if err != nil {
		t.Fatalf("ParseOmapBtree: %v", err)
	}

	q := AllocQuery(tree, tree.Root, Key{ID: 100}, QueryFlagOmap)
	q.index = 0
	if err := q.nodeNext(); err != errEagain {
		t.Fatalf("expected errEagain at index 0, got %v", err)
	}
}

// TestOmapLookup_DescendsThroughInternalNode exercises BtreeQuery's descent
// branch: the root holds a single pointer record and the match lives one
// level down, in a non-root leaf.
func TestOmapLookup_DescendsThroughInternalNode(t *testing.T) {
	const omapOid, rootOid, leafOid = 10, 5, 6
	leafSize := minimalNonRootBlockSize(2, 16)
	rootSize := minimalRootBlockSize(1, 8)

	leaf := buildFixedKVNode(fixedKVNodeSpec{
		blockNr:   leafOid,
		blockSize: leafSize,
		isRoot:    false,
		isLeaf:    true,
		level:     0,
		xid:       1,
		keys: [][]byte{
			omapKeyBytes(100, 1),
			omapKeyBytes(200, 1),
		},
		values: [][]byte{
			omapValBytes(0, uint32(leafSize), 900),
			omapValBytes(0, uint32(leafSize), 901),
		},
	})

	root := buildFixedKVNode(fixedKVNodeSpec{
		blockNr:   rootOid,
		blockSize: rootSize,
		isRoot:    true,
		isLeaf:    false,
		level:     1,
		xid:       1,
		keys: [][]byte{
			omapKeyBytes(100, 1),
		},
		values: [][]byte{
			childOidBytes(leafOid),
		},
	})
	setFooterCounts(root, 2, 2)

	reader := newMemObjectReader(uint32(rootSize))
	reader.blocks[omapOid] = buildOmapPhys(omapOid, rootOid)
	reader.blocks[rootOid] = root
	reader.blocks[leafOid] = leaf

	tree, err := ParseOmapBtree(reader, uint32(rootSize), types.OidT(omapOid), types.XidT(1), nil)
	if err != nil {
		t.Fatalf("ParseOmapBtree: %v", err)
	}

	val, err := OmapLookup(tree.Root, nil, types.OidT(100), types.XidT(1))
	if err != nil {
		t.Fatalf("OmapLookup(100): %v", err)
	}
	if val.OvPaddr != 900 {
		t.Fatalf("expected paddr 900, got %d", val.OvPaddr)
	}
}

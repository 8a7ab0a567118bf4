package btreecheck

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// memObjectReader is an in-memory ObjectReader backing test fixtures: a
// fixed map from block number to raw block bytes, mirroring the shape of
// internal/services.ContainerReader without needing a real container image.
type memObjectReader struct {
	blocks    map[uint64][]byte
	blockSize uint32
}

func newMemObjectReader(blockSize uint32) *memObjectReader {
	return &memObjectReader{blocks: make(map[uint64][]byte), blockSize: blockSize}
}

func (r *memObjectReader) ReadBlock(blockNr uint64) ([]byte, error) {
	b, ok := r.blocks[blockNr]
	if !ok {
		return nil, errFixtureBlockMissing(blockNr)
	}
	return b, nil
}

func (r *memObjectReader) BlockSize() uint32 { return r.blockSize }

type fixtureMissingBlockError struct{ blockNr uint64 }

func (e *fixtureMissingBlockError) Error() string { return "fixture: no block registered" }

func errFixtureBlockMissing(blockNr uint64) error { return &fixtureMissingBlockError{blockNr: blockNr} }

// fletcher64 reimplements internal/parsers/objects.fletcher64's algorithm so
// test fixtures can stamp a checksum that VerifyChecksum accepts, without
// exporting the teacher's unexported helper across package boundaries.
func fletcher64(data []byte) [types.MaxCksumSize]byte {
	const maxUint32 = uint64(0xFFFFFFFF)
	const chunkSize = 1024

	var sum1, sum2 uint64
	for offset := 0; offset < len(data); offset += chunkSize * 4 {
		chunkEnd := offset + chunkSize*4
		if chunkEnd > len(data) {
			chunkEnd = len(data)
		}
		for i := offset; i < chunkEnd; i += 4 {
			if i+4 > len(data) {
				break
			}
			word := binary.LittleEndian.Uint32(data[i : i+4])
			sum1 += uint64(word)
			sum2 += sum1
		}
		sum1 %= maxUint32
		sum2 %= maxUint32
	}
	result := (sum2 << 32) | sum1
	var out [types.MaxCksumSize]byte
	binary.LittleEndian.PutUint64(out[:], result)
	return out
}

// stampChecksum zeroes raw's checksum field and writes the Fletcher-64 sum
// over the whole block, exactly as ChecksumInspector.VerifyChecksum expects.
func stampChecksum(raw []byte) {
	for i := 0; i < types.MaxCksumSize; i++ {
		raw[i] = 0
	}
	sum := fletcher64(raw)
	copy(raw[0:8], sum[:])
}

func putObjHeader(raw []byte, oid, xid uint64, objType, subtype uint32) {
	binary.LittleEndian.PutUint64(raw[8:16], oid)
	binary.LittleEndian.PutUint64(raw[16:24], xid)
	binary.LittleEndian.PutUint32(raw[24:28], objType)
	binary.LittleEndian.PutUint32(raw[28:32], subtype)
}

// omapKeyBytes encodes an omap_key_t (oid, xid), 16 bytes fixed.
func omapKeyBytes(oid, xid uint64) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], oid)
	binary.LittleEndian.PutUint64(b[8:16], xid)
	return b
}

// omapValBytes encodes an omap_val_t (flags, size, paddr), 16 bytes fixed.
func omapValBytes(flags, size uint32, paddr uint64) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], flags)
	binary.LittleEndian.PutUint32(b[4:8], size)
	binary.LittleEndian.PutUint64(b[8:16], paddr)
	return b
}

// childOidBytes encodes a non-leaf fixed-kv value: an 8-byte child object id.
func childOidBytes(oid uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, oid)
	return b
}

// fixedKVNodeSpec describes one fixed-kv (object map personality) node to
// build into a raw, checksummed block.
type fixedKVNodeSpec struct {
	blockNr    uint64
	blockSize  int
	isRoot     bool
	isLeaf     bool
	level      uint16
	xid        uint64
	keys       [][]byte // 16 bytes each
	values     [][]byte // 16 bytes (leaf) or 8 bytes (non-leaf) each
	keyFreeLen int // declared key free-list total; 0 unless a test wants a mismatch
	valFreeLen int // declared value free-list total
	// keyAreaSlack appends this many extra, untracked bytes to the key area
	// (neither covered by a TOC entry nor by the free list) — used to build
	// a free-space accounting mismatch that compareBmaps, not the free-list
	// walk itself, must catch.
	keyAreaSlack int
	// corruptValOffsets, when non-nil, overrides the per-record value TOC
	// offset (area-relative, backward convention) instead of the default
	// tightly packed layout — used to construct overlapping-value fixtures.
	corruptValOffsets []int
}

// buildFixedKVNode lays out a single omap-personality node block: 56-byte
// header, fixed-kv TOC, packed key heap, packed value heap (optionally a
// root info footer), with the free lists declared empty by default.
func buildFixedKVNode(spec fixedKVNodeSpec) []byte {
	raw := make([]byte, spec.blockSize)

	flags := uint16(0)
	if spec.isRoot {
		flags |= types.BtnodeRoot
	}
	if spec.isLeaf {
		flags |= types.BtnodeLeaf
	}
	flags |= types.BtnodeFixedKvSize

	n := len(spec.keys)
	valSize := 16
	if !spec.isLeaf {
		valSize = 8
	}

	const tocStride = 4
	tocLen := n * tocStride
	keyAreaLen := n*16 + spec.keyAreaSlack
	freeOff := keyAreaLen // key area fully used (plus any untracked slack)
	freeLen := 0          // no interior gap
	dataStart := tocLen + freeOff + freeLen

	footerLen := 0
	if spec.isRoot {
		footerLen = infoFooterSize
	}
	buf := raw[nodeHeaderSize:]
	areaEnd := len(buf) - footerLen
	areaLen := areaEnd - dataStart

	binary.LittleEndian.PutUint16(raw[32:34], flags)
	binary.LittleEndian.PutUint16(raw[34:36], spec.level)
	binary.LittleEndian.PutUint32(raw[36:40], uint32(n))
	binary.LittleEndian.PutUint16(raw[40:42], 0)            // toc off
	binary.LittleEndian.PutUint16(raw[42:44], uint16(tocLen))
	binary.LittleEndian.PutUint16(raw[44:46], uint16(freeOff))
	binary.LittleEndian.PutUint16(raw[46:48], uint16(freeLen))
	if spec.keyFreeLen == 0 {
		binary.LittleEndian.PutUint16(raw[48:50], invalidOff)
	}
	binary.LittleEndian.PutUint16(raw[50:52], uint16(spec.keyFreeLen))
	if spec.valFreeLen == 0 {
		binary.LittleEndian.PutUint16(raw[52:54], invalidOff)
	}
	binary.LittleEndian.PutUint16(raw[54:56], uint16(spec.valFreeLen))

	for i := 0; i < n; i++ {
		entryOff := nodeHeaderSize + i*tocStride
		keyOff := i * 16
		valOff := areaLen - i*valSize
		if spec.corruptValOffsets != nil {
			valOff = spec.corruptValOffsets[i]
		}
		binary.LittleEndian.PutUint16(raw[entryOff:entryOff+2], uint16(keyOff))
		binary.LittleEndian.PutUint16(raw[entryOff+2:entryOff+4], uint16(valOff))

		copy(buf[tocLen+keyOff:tocLen+keyOff+16], spec.keys[i])

		vOff := dataStart + (areaLen - valOff)
		copy(buf[vOff:vOff+valSize], spec.values[i])
	}

	if spec.isRoot {
		f := raw[len(raw)-infoFooterSize:]
		binary.LittleEndian.PutUint32(f[0:4], 0)
		binary.LittleEndian.PutUint32(f[4:8], uint32(spec.blockSize))
		binary.LittleEndian.PutUint32(f[8:12], 16)
		binary.LittleEndian.PutUint32(f[12:16], 16)
		binary.LittleEndian.PutUint32(f[16:20], 16)
		binary.LittleEndian.PutUint32(f[20:24], 16)
		// KeyCount/NodeCount are filled in by the caller once the whole
		// tree's shape (single node vs multi-level) is known.
	}

	putObjHeader(raw, spec.blockNr, spec.xid, types.ObjectTypeBtreeNode, types.ObjectTypeOmap)
	if spec.isRoot {
		binary.LittleEndian.PutUint32(raw[24:28], types.ObjectTypeBtree)
		// Root nodes need setFooterCounts (KeyCount/NodeCount) before their
		// checksum is meaningful; non-root nodes are complete now.
		return raw
	}
	stampChecksum(raw)
	return raw
}

// setFooterCounts patches a root node's InfoFooter KeyCount/NodeCount fields
// after the fact and re-stamps the checksum; buildFixedKVNode can't know
// these until the whole tree (possibly multi-level) has been assembled.
func setFooterCounts(raw []byte, keyCount, nodeCount uint64) {
	f := raw[len(raw)-infoFooterSize:]
	binary.LittleEndian.PutUint64(f[24:32], keyCount)
	binary.LittleEndian.PutUint64(f[32:40], nodeCount)
	stampChecksum(raw)
}

// minimalRootBlockSize returns the exact block length that leaves no slack
// in either the key or value heap for an n-record root node — so the
// default (zero) free-list lengths are already correct and a fixture is
// "valid" without needing to construct a real free-list chain.
func minimalRootBlockSize(n, valSize int) int {
	return nodeHeaderSize + n*4 + n*16 + n*valSize + infoFooterSize
}

// minimalNonRootBlockSize is minimalRootBlockSize without the info footer.
func minimalNonRootBlockSize(n, valSize int) int {
	return nodeHeaderSize + n*4 + n*16 + n*valSize
}

// buildOmapPhys builds the omap_phys_t object block ParseOmapBtree reads
// first: a 64-byte block (divisible by 4, as Fletcher-64 requires) whose
// om_tree_oid names the B-tree root block.
func buildOmapPhys(blockNr, treeOid uint64) []byte {
	raw := make([]byte, 64)
	putObjHeader(raw, blockNr, 1, types.ObjectTypeOmap, 0)
	binary.LittleEndian.PutUint64(raw[48:56], treeOid)
	stampChecksum(raw)
	return raw
}

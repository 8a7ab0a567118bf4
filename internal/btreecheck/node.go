package btreecheck

import (
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// BtreeKind is the sum type over the four tree personalities spec.md
// threads through one generic algorithm. Associated rules (fixed-kv
// requirement, leaf record validator, key decoder) attach per variant
// rather than through if-ladders on raw flags.
type BtreeKind int

const (
	KindOmap BtreeKind = iota
	KindCatalog
	KindExtentref
	KindSnapMeta
)

func (k BtreeKind) String() string {
	switch k {
	case KindOmap:
		return "object map"
	case KindCatalog:
		return "catalog"
	case KindExtentref:
		return "extent reference tree"
	case KindSnapMeta:
		return "Snapshot metadata tree"
	default:
		return "unknown tree"
	}
}

// infoFooterSize is sizeof(btree_info_t): 4 (flags) + 4 (node size) +
// 4 (key size) + 4 (value size) + 4 (longest key) + 4 (longest val) +
// 8 (key count) + 8 (node count) = 40 bytes.
const infoFooterSize = 40

// nodeHeaderSize is sizeof(obj_phys_t) + sizeof(btree_node_phys_t)'s fixed
// fields: 32 + (2+2+4+4+4+4+4) = 56 bytes.
const nodeHeaderSize = 56

// Node is the in-memory, fully parsed representation of one on-disk B-tree
// node block (spec.md §3). Offsets toc/key/free/data are measured relative
// to the start of btn_data (immediately after the 56-byte fixed header),
// matching the on-disk nloc_t convention already used by
// internal/types/btree.go's BtnTableSpace/BtnFreeSpace doc comments.
type Node struct {
	Btree  *Btree
	Object Object

	Flags   uint16
	Level   uint16
	Records uint32

	Toc  int // start of the table of contents (0 by definition)
	Key  int // start of the key heap
	Free int // boundary between live keys and the interior free region
	Data int // start of the value heap

	// AreaEnd is the exclusive end of usable btn_data: len(raw)-nodeHeaderSize,
	// minus infoFooterSize when this is a root node.
	AreaEnd int

	raw []byte // full on-disk block, including the 56-byte header
	buf []byte // btn_data: raw[nodeHeaderSize:]

	FreeKeyBmap []bool
	FreeValBmap []bool
	UsedKeyBmap []bool
	UsedValBmap []bool

	// KeyFreeListLen/ValFreeListLen are the L totals advertised by the
	// on-disk free lists (btn_key_free_list.len / btn_val_free_list.len),
	// checked for exact equality against the used-bitmap sweep in §4.3.
	KeyFreeListLen int
	ValFreeListLen int
}

func (n *Node) IsRoot() bool  { return n.Flags&types.BtnodeRoot != 0 }
func (n *Node) IsLeaf() bool  { return n.Flags&types.BtnodeLeaf != 0 }
func (n *Node) FixedKV() bool { return n.Flags&types.BtnodeFixedKvSize != 0 }

// EntryStride is the TOC entry size: 4 bytes (kvoff_t) for fixed-kv nodes,
// 8 bytes (kvloc_t) otherwise.
func (n *Node) EntryStride() int {
	if n.FixedKV() {
		return 4
	}
	return 8
}

// Btree is the owning structure for one verified tree (spec.md §3).
type Btree struct {
	Kind BtreeKind
	Root *Node

	// OmapRoot is the physical object-map tree's root node, used to
	// translate virtual object ids for logical trees (catalog, snap-meta).
	// Nil for trees whose own nodes are addressed physically (omap itself,
	// extentref).
	OmapRoot *Node

	KeyCount    uint64
	NodeCount   uint64
	LongestKey  uint32
	LongestVal  uint32

	reader    ObjectReader
	names     NameComparer
	reporter  Reporter
	blockSize uint32
	xid       types.XidT // the transaction id queries against this tree run at
}

// treePersonality names the expected root/non-root object type and subtype
// for each BtreeKind, per spec.md §4.1's table.
type treePersonality struct {
	rootType    uint32
	nonRootType uint32
	subtype     uint32
}

func personalityFor(kind BtreeKind) treePersonality {
	switch kind {
	case KindOmap:
		return treePersonality{types.ObjectTypeBtree, types.ObjectTypeBtreeNode, types.ObjectTypeOmap}
	case KindCatalog:
		return treePersonality{types.ObjectTypeBtree, types.ObjectTypeBtreeNode, types.ObjectTypeFstree}
	case KindExtentref:
		return treePersonality{types.ObjectTypeBtree, types.ObjectTypeBtreeNode, types.ObjectTypeBlockreftree}
	case KindSnapMeta:
		return treePersonality{types.ObjectTypeBtree, types.ObjectTypeBtreeNode, types.ObjectTypeSnapmetatree}
	default:
		return treePersonality{}
	}
}

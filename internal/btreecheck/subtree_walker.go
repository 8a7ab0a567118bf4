package btreecheck

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// maxTreeDepth bounds recursion per Invariant 14: a conformant tree never
// exceeds 12 levels below the root.
const maxTreeDepth = 12

// walkCursor threads the state that must survive across sibling and
// parent/child boundaries during a traversal: the last key seen in key
// order (for the strict-ascending check) and a stable backing buffer a
// leaf's borrowed Name can be copied into once its owning node is about to
// be revisited or discarded.
type walkCursor struct {
	hasLast bool
	lastKey Key
	nameBuf []byte
}

// walk is the Subtree Walker (C4): depth-first, pre-order traversal of one
// node and its descendants, enforcing key ordering, free-space accounting,
// level/xid descent invariants, and leaf record shape (spec.md §4.4).
func (t *Btree) walk(node *Node, depth int, cur *walkCursor) error {
	blockNr := node.Object.BlockNr

	if depth > maxTreeDepth {
		return structuralErrorf("B-tree", blockNr, "B-tree is too deep.")
	}

	// Per-node personality invariants (spec.md §4.1/§4.4).
	if node.IsLeaf() != (node.Level == 0) {
		return structuralErrorf("B-tree", blockNr, "leaf flag disagrees with level: leaf=%v level=%d", node.IsLeaf(), node.Level)
	}
	switch t.Kind {
	case KindOmap:
		if !node.FixedKV() {
			return structuralErrorf("B-tree", blockNr, "object map node is missing FIXED_KV_SIZE")
		}
	case KindCatalog, KindExtentref, KindSnapMeta:
		if node.FixedKV() {
			return structuralErrorf("B-tree", blockNr, "variable-kv tree node has FIXED_KV_SIZE set")
		}
	}
	if t.Kind == KindSnapMeta {
		if !node.IsRoot() || !node.IsLeaf() {
			return structuralErrorf("B-tree", blockNr, "snapshot metadata tree must be a single leaf-and-root node")
		}
		if node.Records > 0 {
			return &UnsupportedFeatureError{Feature: "non-empty snapshot metadata tree"}
		}
	}

	t.NodeCount++
	if node.IsLeaf() {
		t.KeyCount += uint64(node.Records)
	}

	decode := t.keyDecoder()

	for i := 0; i < int(node.Records); i++ {
		koff, klen, err := node.locateKey(i, blockNr)
		if err != nil {
			return err
		}
		if err := markUsed(node.UsedKeyBmap, koff-node.Key, klen, blockNr, "key"); err != nil {
			return err
		}
		if uint32(klen) > t.LongestKey {
			t.LongestKey = uint32(klen)
		}

		var curr Key
		if decode != nil {
			curr, err = decode(node.bytesAt(koff, klen))
			if err != nil {
				return err
			}
		}

		if cur.hasLast {
			cmp := CompareKeys(cur.lastKey, curr, t.names)
			if cmp > 0 {
				return structuralErrorf("B-tree", blockNr, "keys are out of order.")
			}
			if cmp == 0 && node.IsLeaf() {
				return structuralErrorf("B-tree", blockNr, "keys are out of order.")
			}
		}
		cur.lastKey = curr
		cur.hasLast = true

		voff, vlen, err := node.locateData(i, blockNr)
		if err != nil {
			return err
		}
		if err := markUsed(node.UsedValBmap, voff-node.Data, vlen, blockNr, "value"); err != nil {
			return err
		}

		if node.IsLeaf() {
			if uint32(vlen) > t.LongestVal {
				t.LongestVal = uint32(vlen)
			}
			if err := t.validateLeafRecord(node, curr, node.bytesAt(voff, vlen), &cur.lastKey, blockNr); err != nil {
				return err
			}
		} else {
			if vlen != 8 {
				return structuralErrorf("B-tree", blockNr, "non-leaf value must be an 8-byte child object id")
			}
			childOid := types.OidT(binary.LittleEndian.Uint64(node.bytesAt(voff, vlen)))
			child, err := t.readNode(childOid, t.xid)
			if err != nil {
				return err
			}
			if child.IsRoot() {
				return structuralErrorf("B-tree", child.Object.BlockNr, "only the root node may carry the ROOT flag")
			}
			if child.Level != node.Level-1 {
				return structuralErrorf("B-tree", child.Object.BlockNr,
					"child level %d is not one less than parent level %d", child.Level, node.Level)
			}
			if (t.Kind == KindOmap || t.Kind == KindExtentref) && child.Object.Xid > node.Object.Xid {
				return structuralErrorf("B-tree", child.Object.BlockNr, "xid of node is older than xid of its child.")
			}
			if err := t.walk(child, depth+1, cur); err != nil {
				return err
			}
		}
	}

	if err := node.compareBmaps(blockNr); err != nil {
		return err
	}

	// Stabilize a leaf's borrowed Name into the caller-owned buffer before
	// this node's records are revisited by a sibling pass (§4.4's
	// name_buffer lifecycle).
	if cur.nameBuf != nil && node.IsLeaf() && cur.lastKey.Name != nil {
		n := copy(cur.nameBuf, cur.lastKey.Name)
		cur.lastKey.Name = cur.nameBuf[:n]
	}

	return nil
}

// markUsed sets bits [pos, pos+length) of bmap, failing if any byte was
// already claimed by an earlier record (spec.md's "overlapping record data"
// scenario).
func markUsed(bmap []bool, pos, length int, blockNr uint64, area string) error {
	if pos < 0 || pos+length > len(bmap) {
		return structuralErrorf("B-tree", blockNr, "%s record range [%d,%d) escapes its area", area, pos, pos+length)
	}
	for i := pos; i < pos+length; i++ {
		if bmap[i] {
			return structuralErrorf("B-tree", blockNr, "overlapping record data.")
		}
		bmap[i] = true
	}
	return nil
}

// keyDecoder selects this tree's KeyDecoder by personality. Snap-meta trees
// carry no records and never reach this call.
func (t *Btree) keyDecoder() KeyDecoder {
	switch t.Kind {
	case KindOmap:
		return ReadOmapKey
	case KindCatalog:
		return ReadCatKey
	case KindExtentref:
		return ReadExtentrefKey
	default:
		return nil
	}
}

// validateLeafRecord dispatches a leaf's value to the personality-specific
// shape check. For extentref trees, the derived extent end block replaces
// lastKey.ID so the walker's ordering cursor tracks physical-extent
// boundaries rather than raw key bytes (spec.md §4.4 step 5). node is the
// leaf the record was read from: object map records additionally carry
// their own xid (key.Number, per ReadOmapKey), which Invariant 12 requires
// never exceed the xid the owning node itself was written at.
func (t *Btree) validateLeafRecord(node *Node, key Key, value []byte, lastKey *Key, blockNr uint64) error {
	switch t.Kind {
	case KindOmap:
		if len(value) != 16 {
			return structuralErrorf("B-tree", blockNr, "object map value has wrong size: got %d, want 16", len(value))
		}
		if key.Number > uint64(node.Object.Xid) {
			return structuralErrorf("B-tree", blockNr, "xid of node is older than xid of its record.")
		}
		return nil
	case KindCatalog:
		validator, known := catalogValidatorFor(key.Type)
		if !known {
			t.reportUnknown(key.Type)
			return nil
		}
		_, err := validator(value)
		return err
	case KindExtentref:
		derived, err := validatePhysExtRecord(value, key.ID)
		if err != nil {
			return err
		}
		lastKey.ID = derived
		return nil
	default:
		return nil
	}
}

func (t *Btree) reportUnknown(recordType uint32) {
	if t.reporter == nil {
		return
	}
	t.reporter.ReportUnknown(unknownRecordTypeLabel(recordType))
}

package btreecheck

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// QueryFlags is the bit set spec.md §3 specifies over a Query: which tree
// personality it targets, plus the MULTIPLE/NEXT/EXACT/DONE control bits
// §4.6's algorithm threads through node_query and btree_query.
type QueryFlags uint32

const (
	QueryFlagOmap QueryFlags = 1 << iota
	QueryFlagCat
	QueryFlagExtentref
	QueryFlagMultiple
	QueryFlagNext
	QueryFlagExact
	QueryFlagDone
)

// Query is the transient cursor spec.md §3 specifies: one B-tree level's
// position during a descent. parent chains a Query to the Query of its
// enclosing level so that, when MULTIPLE is set, btree_query can backtrack
// to a sibling subtree once the current one is exhausted (spec.md §4.6).
type Query struct {
	tree      *Btree
	node      *Node
	parent    *Query
	searchKey Key
	flags     QueryFlags
	index     int
	keyOff    int
	keyLen    int
	off       int
	len       int
	depth     int
}

// AllocQuery builds the root Query for a descent from node, matching
// spec.md §6's alloc_query contract.
func AllocQuery(t *Btree, node *Node, searchKey Key, flags QueryFlags) *Query {
	return &Query{tree: t, node: node, searchKey: searchKey, flags: flags, index: int(node.Records), depth: 0}
}

// FreeQuery releases every node in q's parent chain (spec.md §5: "free_query
// releases every node in that chain"). Go's GC reclaims the backing memory
// regardless; walking the chain here keeps the release point explicit and
// paired with AllocQuery the way this repo's other alloc/close helpers read.
func FreeQuery(q *Query) {
	for cur := q; cur != nil; {
		next := cur.parent
		cur.parent = nil
		cur.node = nil
		cur = next
	}
}

// nodeNext implements node_next (spec.md §4.6): step the cursor one entry
// back toward the start of the node. Used both to resume a MULTIPLE-mode
// iteration after a prior match and, via btree_query's EAGAIN handling, to
// search backward for an unconsumed sibling branch at a parent level.
func (q *Query) nodeNext() error {
	blockNr := q.node.Object.BlockNr
	if q.index == 0 {
		return errEagain
	}
	q.index--
	koff, klen, err := q.node.locateKey(q.index, blockNr)
	if err != nil {
		return err
	}
	decode := q.tree.keyDecoder()
	key, err := decode(q.node.bytesAt(koff, klen))
	if err != nil {
		return err
	}
	cmp := CompareKeys(key, q.searchKey, q.tree.names)
	if cmp > 0 {
		return structuralErrorf("query engine", blockNr, "keys are out of order.")
	}
	q.keyOff, q.keyLen = koff, klen
	if cmp != 0 {
		q.flags |= QueryFlagDone
		if q.flags&QueryFlagExact != 0 && q.node.IsLeaf() {
			return errNodata
		}
	}
	return nil
}

// bisect implements node_query's bisection branch (spec.md §4.6): find the
// greatest key <= target. left=0, right=records-1; mid=ceil((left+right)/2);
// mid > target narrows right, mid <= target narrows left; converges when
// left == right. An exact match at mid never short-circuits the loop, so
// when several records compare equal to the target it converges on the
// last (rightmost) of them; nodeNext then steps backward through the rest.
func (q *Query) bisect() error {
	blockNr := q.node.Object.BlockNr
	if q.node.Records == 0 {
		return errNodata
	}
	decode := q.tree.keyDecoder()

	left, right := 0, int(q.node.Records)-1
	for left != right {
		mid := left + (right-left+1)/2
		koff, klen, err := q.node.locateKey(mid, blockNr)
		if err != nil {
			return err
		}
		key, err := decode(q.node.bytesAt(koff, klen))
		if err != nil {
			return err
		}
		if CompareKeys(key, q.searchKey, q.tree.names) > 0 {
			right = mid - 1
		} else {
			left = mid
		}
	}

	koff, klen, err := q.node.locateKey(left, blockNr)
	if err != nil {
		return err
	}
	key, err := decode(q.node.bytesAt(koff, klen))
	if err != nil {
		return err
	}
	cmp := CompareKeys(key, q.searchKey, q.tree.names)
	if cmp > 0 {
		return errNodata
	}

	q.index = left
	q.keyOff, q.keyLen = koff, klen
	if cmp != 0 {
		q.flags |= QueryFlagDone
		if q.flags&QueryFlagExact != 0 && q.node.IsLeaf() {
			return errNodata
		}
	}
	return nil
}

// nodeQuery dispatches to bisect or nodeNext depending on whether this call
// is a fresh descent into the node or a resumed NEXT-mode iteration.
func (q *Query) nodeQuery() error {
	if q.flags&QueryFlagNext != 0 {
		return q.nodeNext()
	}
	return q.bisect()
}

// BtreeQuery is the iterative descent driver spec.md §6 names btree_query:
// it repeatedly runs nodeQuery at q's current level, backtracks through the
// parent chain on EAGAIN, and descends into the matching child, terminating
// on a leaf hit, ENODATA, or a depth/structural failure. Depth is capped at
// maxTreeDepth (Invariant 14).
func BtreeQuery(q *Query) error {
	for {
		if q.depth > maxTreeDepth {
			return structuralErrorf("query engine", q.node.Object.BlockNr, "B-tree is too deep.")
		}

		err := q.nodeQuery()
		if err == errEagain {
			if q.parent == nil {
				return errNodata
			}
			parent := q.parent
			q.node = nil
			parent.flags |= QueryFlagNext
			q = parent
			continue
		}
		if err != nil {
			return err
		}

		blockNr := q.node.Object.BlockNr
		if q.node.IsLeaf() {
			voff, vlen, err := q.node.locateData(q.index, blockNr)
			if err != nil {
				return err
			}
			if vlen == 0 {
				return structuralErrorf("query engine", blockNr, "matched record has a zero-length value")
			}
			q.off, q.len = voff, vlen
			return nil
		}

		voff, vlen, err := q.node.locateData(q.index, blockNr)
		if err != nil {
			return err
		}
		if vlen != 8 {
			return structuralErrorf("query engine", blockNr, "non-leaf value must be an 8-byte child object id")
		}
		childOid := types.OidT(binary.LittleEndian.Uint64(q.node.bytesAt(voff, vlen)))
		child, err := q.tree.readNode(childOid, q.tree.xid)
		if err != nil {
			return err
		}

		if q.flags&QueryFlagMultiple != 0 {
			q = &Query{
				tree:      q.tree,
				node:      child,
				parent:    q,
				searchKey: q.searchKey,
				flags:     q.flags &^ (QueryFlagNext | QueryFlagDone),
				index:     int(child.Records),
				depth:     q.depth + 1,
			}
		} else {
			q.node = child
			q.index = int(child.Records)
			q.flags &^= QueryFlagNext
			q.depth++
		}
	}
}

// NextMatch resumes a MULTIPLE-mode query after a prior hit, backtracking
// across sibling subtrees via the parent chain as needed (spec.md §4.6's
// EAGAIN-driven resumption). The caller should stop iterating once q.Done()
// reports true — later calls no longer compare equal to the original search
// key.
func NextMatch(q *Query) error {
	q.flags |= QueryFlagNext
	return BtreeQuery(q)
}

// MatchedKey decodes the key at q's current leaf position.
func (q *Query) MatchedKey() (Key, error) {
	decode := q.tree.keyDecoder()
	return decode(q.node.bytesAt(q.keyOff, q.keyLen))
}

// Value returns the raw value bytes at q's current leaf position.
func (q *Query) Value() []byte {
	return q.node.bytesAt(q.off, q.len)
}

// Done reports whether q has passed the last record comparing equal to its
// search key (spec.md §3's DONE flag).
func (q *Query) Done() bool {
	return q.flags&QueryFlagDone != 0
}

// OmapLookup resolves a virtual (oid, xid) pair to its physical mapping:
// the floor search over (id=oid, number=xid) ordering naturally yields the
// newest snapshot of oid at or before xid, which is how the object map is
// defined to behave. The floor match is accepted only if its object id
// equals oid exactly; the xid component is where floor semantics apply.
func OmapLookup(omapRoot *Node, names NameComparer, oid types.OidT, xid types.XidT) (types.OmapValT, error) {
	target := Key{ID: uint64(oid), Number: uint64(xid)}
	q := AllocQuery(omapRoot.Btree, omapRoot, target, QueryFlagOmap)
	defer FreeQuery(q)

	if err := BtreeQuery(q); err != nil {
		if err == errNodata {
			return types.OmapValT{}, structuralErrorf("object map", omapRoot.Object.BlockNr, "record missing for id 0x%x.", uint64(oid))
		}
		return types.OmapValT{}, err
	}
	key, err := q.MatchedKey()
	if err != nil {
		return types.OmapValT{}, err
	}
	if key.ID != uint64(oid) {
		return types.OmapValT{}, structuralErrorf("object map", omapRoot.Object.BlockNr, "record missing for id 0x%x.", uint64(oid))
	}

	value := q.Value()
	if len(value) != 16 {
		return types.OmapValT{}, structuralErrorf("query engine", omapRoot.Object.BlockNr,
			"object map value has wrong size: got %d, want 16", len(value))
	}
	return types.OmapValT{
		OvFlags: binary.LittleEndian.Uint32(value[0:4]),
		OvSize:  binary.LittleEndian.Uint32(value[4:8]),
		OvPaddr: types.Paddr(binary.LittleEndian.Uint64(value[8:16])),
	}, nil
}

// ExtentrefLookup resolves the physical extent record whose range covers
// physAddr: the floor search over extent start-block ordering finds the
// closest candidate; the caller is responsible for checking physAddr
// actually falls within the returned extent's length. When no candidate
// exists at all, the result is a *StructuralError. Every on-disk phys_ext
// key carries type APFS_TYPE_EXTENT (internal/types/data_streams.go,
// internal/types/file_system_objects.go's ApfsTypeExtent), so the search
// key must carry that type too or keycmp's type component never matches.
func ExtentrefLookup(root *Node, names NameComparer, physAddr uint64) (Key, []byte, error) {
	target := Key{ID: physAddr, Type: uint32(types.ApfsTypeExtent)}
	q := AllocQuery(root.Btree, root, target, QueryFlagExtentref)
	defer FreeQuery(q)

	if err := BtreeQuery(q); err != nil {
		if err == errNodata {
			return Key{}, nil, structuralErrorf("extent reference tree", root.Object.BlockNr, "record missing for block 0x%x.", physAddr)
		}
		return Key{}, nil, err
	}
	key, err := q.MatchedKey()
	if err != nil {
		return Key{}, nil, err
	}
	return key, q.Value(), nil
}

package btreecheck

import (
	"errors"
	"testing"
)

// newTestNodeForFreeList builds the minimal Node needed to exercise
// parseFreeLists/compareBmaps in isolation, without going through a full
// readNode/checksum round trip: a key area and a value area of the given
// lengths, with the free-list head offsets and on-disk list bytes supplied
// directly by the caller.
func newTestNodeForFreeList(keyAreaLen, valAreaLen int, keyHeadOff, valHeadOff uint16, keyFreeListLen, valFreeListLen int) *Node {
	raw := make([]byte, nodeHeaderSize+keyAreaLen+valAreaLen)
	putUint16(raw[48:50], keyHeadOff)
	putUint16(raw[52:54], valHeadOff)

	n := &Node{
		raw:            raw,
		buf:            raw[nodeHeaderSize:],
		Toc:            0,
		Key:            0,
		Free:           keyAreaLen,
		Data:           keyAreaLen,
		AreaEnd:        keyAreaLen + valAreaLen,
		KeyFreeListLen: keyFreeListLen,
		ValFreeListLen: valFreeListLen,
	}
	return n
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func TestParseFreeLists_EmptyListsOnFullyUsedAreas(t *testing.T) {
	n := newTestNodeForFreeList(16, 16, invalidOff, invalidOff, 0, 0)
	if err := n.parseFreeLists(1); err != nil {
		t.Fatalf("parseFreeLists: %v", err)
	}

	n.UsedKeyBmap = make([]bool, n.Free-n.Key)
	n.UsedValBmap = make([]bool, n.AreaEnd-n.Data)
	for i := range n.UsedKeyBmap {
		n.UsedKeyBmap[i] = true
	}
	for i := range n.UsedValBmap {
		n.UsedValBmap[i] = true
	}

	if err := n.compareBmaps(1); err != nil {
		t.Fatalf("compareBmaps: %v", err)
	}
}

func TestWalkKeyFreeList_SingleCellMarkedFree(t *testing.T) {
	n := newTestNodeForFreeList(16, 0, 0, invalidOff, 16, 0)
	// One free-list cell covering the whole 16-byte key area: header
	// (next=invalidOff, len=16) at area-relative offset 0.
	putUint16(n.buf[0:2], invalidOff)
	putUint16(n.buf[2:4], 16)

	if err := n.parseFreeLists(1); err != nil {
		t.Fatalf("parseFreeLists: %v", err)
	}
	for i, free := range n.FreeKeyBmap {
		if !free {
			t.Fatalf("byte %d expected free, got used", i)
		}
	}

	n.UsedKeyBmap = make([]bool, n.Free-n.Key) // nothing used
	n.UsedValBmap = make([]bool, n.AreaEnd-n.Data)
	if err := n.compareBmaps(1); err != nil {
		t.Fatalf("compareBmaps: %v", err)
	}
}

func TestWalkKeyFreeList_DoubleListedByteIsStructuralError(t *testing.T) {
	n := newTestNodeForFreeList(32, 0, 0, invalidOff, 32, 0)
	// Two cells of 16 bytes each whose ranges overlap: the first claims
	// [0,16), the "next" cell also starts at 0 instead of 16.
	putUint16(n.buf[0:2], 0) // next points back at itself
	putUint16(n.buf[2:4], 16)

	err := n.parseFreeLists(1)
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected *StructuralError for a free-list cell listed twice, got %v (%T)", err, err)
	}
}

func TestWalkKeyFreeList_TotalMismatchIsStructuralError(t *testing.T) {
	n := newTestNodeForFreeList(16, 0, 0, invalidOff, 32, 0)
	// Advertised total (32) exceeds what a single 16-byte cell can supply
	// before the list terminates at invalidOff.
	putUint16(n.buf[0:2], invalidOff)
	putUint16(n.buf[2:4], 16)

	err := n.parseFreeLists(1)
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected *StructuralError for a free-list total mismatch, got %v (%T)", err, err)
	}
}

func TestCompareArea_UsedAndFreeOverlapIsStructuralError(t *testing.T) {
	n := newTestNodeForFreeList(16, 0, 0, invalidOff, 16, 0)
	putUint16(n.buf[0:2], invalidOff)
	putUint16(n.buf[2:4], 16)
	if err := n.parseFreeLists(1); err != nil {
		t.Fatalf("parseFreeLists: %v", err)
	}

	n.UsedKeyBmap = make([]bool, n.Free-n.Key)
	n.UsedKeyBmap[0] = true // claims a byte the free list also claims
	n.UsedValBmap = make([]bool, n.AreaEnd-n.Data)

	err := n.compareBmaps(1)
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected *StructuralError for used/free overlap, got %v (%T)", err, err)
	}
}

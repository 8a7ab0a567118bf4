package btreecheck

import "encoding/binary"

// locateKey implements locate_key(node, i) -> (offset_in_block, length):
// the key's byte range within n.buf, verified to lie wholly inside
// [key, free).
func (n *Node) locateKey(i int, blockNr uint64) (off, length int, err error) {
	if i < 0 || i >= int(n.Records) {
		return 0, 0, structuralErrorf("B-tree", blockNr, "record index %d out of range [0,%d)", i, n.Records)
	}

	if n.FixedKV() {
		entryOff := n.Toc + i*4
		if entryOff+4 > n.Key {
			return 0, 0, structuralErrorf("B-tree", blockNr, "fixed-kv TOC entry %d out of bounds", i)
		}
		keyOff := int(binary.LittleEndian.Uint16(n.buf[entryOff : entryOff+2]))
		off = n.Key + keyOff
		length = 16
	} else {
		entryOff := n.Toc + i*8
		if entryOff+8 > n.Key {
			return 0, 0, structuralErrorf("B-tree", blockNr, "variable-kv TOC entry %d out of bounds", i)
		}
		keyOff := int(binary.LittleEndian.Uint16(n.buf[entryOff : entryOff+2]))
		keyLen := int(binary.LittleEndian.Uint16(n.buf[entryOff+2 : entryOff+4]))
		off = n.Key + keyOff
		length = keyLen
	}

	if off < n.Key || off+length > n.Free {
		return 0, 0, structuralErrorf("B-tree", blockNr, "record %d key range [%d,%d) escapes key area [%d,%d)",
			i, off, off+length, n.Key, n.Free)
	}
	return off, length, nil
}

// locateData implements locate_data(node, i) -> (offset_in_block, length):
// the value's byte range, verified to lie wholly inside [data, data+area_len).
// Value offsets are measured backwards from the end of the value area.
func (n *Node) locateData(i int, blockNr uint64) (off, length int, err error) {
	if i < 0 || i >= int(n.Records) {
		return 0, 0, structuralErrorf("B-tree", blockNr, "record index %d out of range [0,%d)", i, n.Records)
	}
	areaLen := n.AreaEnd - n.Data

	if n.FixedKV() {
		entryOff := n.Toc + i*4
		if entryOff+4 > n.Key {
			return 0, 0, structuralErrorf("B-tree", blockNr, "fixed-kv TOC entry %d out of bounds", i)
		}
		valOff := int(binary.LittleEndian.Uint16(n.buf[entryOff+2 : entryOff+4]))
		off = n.Data + (areaLen - valOff)
		if n.IsLeaf() {
			length = 16
		} else {
			length = 8
		}
	} else {
		entryOff := n.Toc + i*8
		if entryOff+8 > n.Key {
			return 0, 0, structuralErrorf("B-tree", blockNr, "variable-kv TOC entry %d out of bounds", i)
		}
		valOff := int(binary.LittleEndian.Uint16(n.buf[entryOff+4 : entryOff+6]))
		valLen := int(binary.LittleEndian.Uint16(n.buf[entryOff+6 : entryOff+8]))
		off = n.Data + (areaLen - valOff)
		length = valLen
	}

	if off < n.Data || off+length > n.AreaEnd {
		return 0, 0, structuralErrorf("B-tree", blockNr, "record %d value range [%d,%d) escapes value area [%d,%d)",
			i, off, off+length, n.Data, n.AreaEnd)
	}
	return off, length, nil
}

// bytesAt returns the n.buf slice backing a (off,length) pair returned by
// locateKey/locateData (both already area-relative to the start of btn_data).
func (n *Node) bytesAt(off, length int) []byte {
	return n.buf[off : off+length]
}

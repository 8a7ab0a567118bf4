package btreecheck

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Key is the decoded, tree-agnostic key tuple every personality's on-disk
// key bytes are reduced to: (id, type, number, name?). Comparison order is
// lexicographic on those fields in that order; a nil Name compares equal at
// its position.
type Key struct {
	ID     uint64
	Type   uint32
	Number uint64
	Name   []byte
}

// KeyDecoder decodes raw on-disk key bytes into a Key, failing fatally (by
// returning an error) on malformed input. One implementation exists per tree
// personality: omap, catalog, extentref. Snap-meta trees carry no keys.
type KeyDecoder func(raw []byte) (Key, error)

// objIDMask/objTypeMask mirror the (id,type) prefix packing used throughout
// the file-system record key family, grounded on
// internal/parsers/file_system_objects/j_key_reader.go.
const (
	objIDMask    uint64 = 0x0FFFFFFFFFFFFFFF
	objTypeShift        = 60
)

// ReadOmapKey decodes an omap_key_t: fixed 16 bytes, (oid uint64, xid uint64).
// The decoded Key carries the object id in ID and the transaction id in
// Number so keycmp's (id, type, number) ordering matches the on-disk
// (oid, xid) ordering omap requires.
func ReadOmapKey(raw []byte) (Key, error) {
	if len(raw) < 16 {
		return Key{}, fmt.Errorf("omap key: expected 16 bytes, got %d", len(raw))
	}
	oid := binary.LittleEndian.Uint64(raw[0:8])
	xid := binary.LittleEndian.Uint64(raw[8:16])
	return Key{ID: oid, Type: 0, Number: xid}, nil
}

// ReadCatKey decodes the common j_key_t prefix (obj_id_and_type: 8 bytes)
// shared by every catalog record family, then a record-specific suffix
// carrying the Number/Name fields (name for dentry/xattr records, offset for
// file-extent records, sibling id for sibling records). Structural shape
// only: it does not interpret the suffix payload beyond what's needed for
// ordering.
func ReadCatKey(raw []byte) (Key, error) {
	if len(raw) < 8 {
		return Key{}, fmt.Errorf("catalog key: expected at least 8 bytes, got %d", len(raw))
	}
	idAndType := binary.LittleEndian.Uint64(raw[0:8])
	id := idAndType & objIDMask
	typ := uint32(idAndType >> objTypeShift)

	rest := raw[8:]
	switch typ {
	case jObjTypeXattr, jObjTypeDirRec:
		// name-bearing record: suffix is a NUL-free UTF-8 name, possibly
		// preceded by a hash/index for hashed directories.
		name := rest
		if typ == jObjTypeDirRec && len(rest) >= 4 {
			// hashed dentry keys carry a 4-byte name-hash-and-length prefix
			name = rest[4:]
		}
		return Key{ID: id, Type: typ, Name: name}, nil
	case jObjTypeFileExtent:
		if len(rest) < 8 {
			return Key{}, fmt.Errorf("catalog key: file-extent suffix too short: %d", len(rest))
		}
		return Key{ID: id, Type: typ, Number: binary.LittleEndian.Uint64(rest[0:8])}, nil
	case jObjTypeSiblingLink:
		if len(rest) < 8 {
			return Key{}, fmt.Errorf("catalog key: sibling-link suffix too short: %d", len(rest))
		}
		return Key{ID: id, Type: typ, Number: binary.LittleEndian.Uint64(rest[0:8])}, nil
	default:
		// inode / dir-stats / crypto-state / dstream-id / etc: no suffix
		// distinguishes records of the same (id,type).
		return Key{ID: id, Type: typ}, nil
	}
}

// ReadExtentrefKey decodes a phys_ext key: an 8-byte obj_id_and_type prefix
// whose id is the starting physical block number of the extent.
func ReadExtentrefKey(raw []byte) (Key, error) {
	if len(raw) < 8 {
		return Key{}, fmt.Errorf("extentref key: expected at least 8 bytes, got %d", len(raw))
	}
	idAndType := binary.LittleEndian.Uint64(raw[0:8])
	return Key{ID: idAndType & objIDMask, Type: uint32(idAndType >> objTypeShift)}, nil
}

// Catalog j_obj_type values relevant to key decoding/ordering; kept local to
// this package rather than imported from internal/types/file_system_objects
// wholesale, since only these few distinguish key suffix shape.
const (
	jObjTypeInode       uint32 = 3
	jObjTypeXattr       uint32 = 4
	jObjTypeSiblingLink uint32 = 5
	jObjTypeDstreamID   uint32 = 6
	jObjTypeCryptoState uint32 = 7
	jObjTypeFileExtent  uint32 = 8
	jObjTypeDirRec      uint32 = 9
	jObjTypeDirStats    uint32 = 10
	jObjTypeSnapMeta    uint32 = 11
	jObjTypeSiblingMap  uint32 = 12
)

// NameComparer orders the Name component of two keys. xattr names compare
// byte-for-byte; directory-entry names compare under Unicode normalization
// whose folding policy is a property of the volume (case-sensitive vs
// case-insensitive), selected by the caller.
type NameComparer interface {
	Compare(a, b []byte) int
}

// ByteNameComparer compares names as raw bytes. Used for xattr names, which
// APFS defines as an opaque byte sequence.
type ByteNameComparer struct{}

func (ByteNameComparer) Compare(a, b []byte) int { return bytes.Compare(a, b) }

// UnicodeNameComparer compares directory-entry names after NFD normalization,
// approximating the case/diacritic-insensitive comparison the real
// filesystem uses for volumes with that feature flag set.
type UnicodeNameComparer struct {
	CaseInsensitive bool
}

func (c UnicodeNameComparer) Compare(a, b []byte) int {
	na := norm.NFD.Bytes(a)
	nb := norm.NFD.Bytes(b)
	if c.CaseInsensitive {
		na = bytes.ToLower(na)
		nb = bytes.ToLower(nb)
	}
	return bytes.Compare(na, nb)
}

// CompareKeys implements keycmp: (id, type, number, name) in that order. The
// name comparator is selected by key type (byte comparison for xattr names,
// the supplied general comparator otherwise).
func CompareKeys(a, b Key, names NameComparer) int {
	if a.ID != b.ID {
		if a.ID < b.ID {
			return -1
		}
		return 1
	}
	if a.Type != b.Type {
		if a.Type < b.Type {
			return -1
		}
		return 1
	}
	if a.Number != b.Number {
		if a.Number < b.Number {
			return -1
		}
		return 1
	}
	if a.Name == nil || b.Name == nil {
		return 0
	}
	comparer := names
	if a.Type == jObjTypeXattr {
		comparer = ByteNameComparer{}
	}
	if comparer == nil {
		comparer = ByteNameComparer{}
	}
	return comparer.Compare(a.Name, b.Name)
}

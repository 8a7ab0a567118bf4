// Package apfs implements data structures for the Apple File System.
// This package is based on the official Apple File System Reference (June 2020).
package types

// Objects (pages 10-21)
// Depending on how they're stored, objects have some differences, the most important
// of which is the way you use an object identifier to find an object.

// OidT is an object identifier.
// For a physical object, its identifier is the logical block address on disk where the object is stored.
// For an ephemeral object, its identifier is a number.
// For a virtual object, its identifier is a number.
// Reference: page 12
type OidT uint64

// XidT is a transaction identifier.
// Transactions are uniquely identified by a monotonically increasing number.
// The number zero isn't a valid transaction identifier.
// Reference: page 12
type XidT uint64

// ObjPhysT is a header used at the beginning of all objects.
// Reference: page 10
type ObjPhysT struct {
	// The Fletcher 64 checksum of the object, with length matching MaxCksumSize. (page 10)
	OChecksum [MaxCksumSize]byte
	// The object's identifier. (page 11)
	OOid OidT
	// The identifier of the most recent transaction that this object was modified in. (page 11)
	OXid XidT
	// The object's type and flags. (page 11)
	// An object type is a 32-bit value: the low 16 bits indicate the type, and the high 16 bits are flags.
	OType uint32
	// The object's subtype. (page 11)
	// Subtypes indicate the type of data stored in a data structure such as a B-tree.
	OSubtype uint32
}

// Object Identifier Constants (pages 12-13)

// XidInvalid is an invalid transaction identifier.
// Reference: page 12
const XidInvalid XidT = 0

// OidNxSuperblock is the ephemeral object identifier for the container superblock.
// Reference: page 13
const OidNxSuperblock OidT = 1

// OidInvalid is an invalid object identifier.
// Reference: page 13
const OidInvalid OidT = 0

// OidReservedCount is the number of object identifiers that are reserved for objects with a fixed object identifier.
// Reference: page 13
const OidReservedCount uint64 = 1024

// Object Type Masks (pages 13-14)

// ObjectTypeMask is the bit mask used to access the type.
// Reference: page 13
const ObjectTypeMask uint32 = 0x0000ffff

// ObjectTypeFlagsMask is the bit mask used to access the flags.
// Reference: page 13
const ObjectTypeFlagsMask uint32 = 0xffff0000

// ObjStorageTypeMask is the bit mask used to access the storage portion of the object type.
// Reference: page 14
const ObjStorageTypeMask uint32 = 0xc0000000

// ObjectTypeFlagsDefinedMask is a bit mask of all bits for which flags are defined.
// Reference: page 14
const ObjectTypeFlagsDefinedMask uint32 = 0xf8000000

// MaxCksumSize is the number of bytes used for an object checksum.
// Reference: page 11
const MaxCksumSize = 8

// Object Types (pages 14-19)

const ObjectTypeNxSuperblock uint32 = 0x00000001
const ObjectTypeBtree uint32 = 0x00000002
const ObjectTypeBtreeNode uint32 = 0x00000003
const ObjectTypeSpaceman uint32 = 0x00000005
const ObjectTypeSpacemanCab uint32 = 0x00000006
const ObjectTypeSpacemanCib uint32 = 0x00000007
const ObjectTypeSpacemanBitmap uint32 = 0x00000008
const ObjectTypeSpacemanFreeQueue uint32 = 0x00000009
const ObjectTypeExtentListTree uint32 = 0x0000000a
const ObjectTypeOmap uint32 = 0x0000000b
const ObjectTypeCheckpointMap uint32 = 0x0000000c
const ObjectTypeFs uint32 = 0x0000000d
const ObjectTypeFstree uint32 = 0x0000000e
const ObjectTypeBlockreftree uint32 = 0x0000000f
const ObjectTypeSnapmetatree uint32 = 0x00000010
const ObjectTypeNxReaper uint32 = 0x00000011
const ObjectTypeNxReapList uint32 = 0x00000012
const ObjectTypeOmapSnapshot uint32 = 0x00000013
const ObjectTypeEfiJumpstart uint32 = 0x00000014
const ObjectTypeFusionMiddleTree uint32 = 0x00000015
const ObjectTypeNxFusionWbc uint32 = 0x00000016
const ObjectTypeNxFusionWbcList uint32 = 0x00000017
const ObjectTypeErState uint32 = 0x00000018
const ObjectTypeGbitmap uint32 = 0x00000019
const ObjectTypeGbitmapTree uint32 = 0x0000001a
const ObjectTypeGbitmapBlock uint32 = 0x0000001b
const ObjectTypeErRecoveryBlock uint32 = 0x0000001c
const ObjectTypeSnapMetaExt uint32 = 0x0000001d
const ObjectTypeIntegrityMeta uint32 = 0x0000001e
const ObjectTypeFextTree uint32 = 0x0000001f
const ObjectTypeReserved20 uint32 = 0x00000020
const ObjectTypeInvalid uint32 = 0x00000000
const ObjectTypeTest uint32 = 0x000000ff
const ObjectTypeContainerKeybag uint32 = 'k' | 'e'<<8 | 'y'<<16 | 's'<<24 // 'keys'
const ObjectTypeVolumeKeybag uint32 = 'r' | 'e'<<8 | 'c'<<16 | 's'<<24   // 'recs'
const ObjectTypeMediaKeybag uint32 = 'm' | 'k'<<8 | 'e'<<16 | 'y'<<24    // 'mkey'

// Object Type Flags (pages 20-21)

const ObjVirtual uint32 = 0x00000000
const ObjEphemeral uint32 = 0x80000000
const ObjPhysical uint32 = 0x40000000
const ObjNoheader uint32 = 0x20000000
const ObjEncrypted uint32 = 0x10000000
const ObjNonpersistent uint32 = 0x08000000

package types

import "math"

// Object Maps (pages 44-50)
// An object map uses a B-tree to store a mapping from virtual object identifiers
// and transaction identifiers to the physical addresses where those objects are stored.

// OmapPhysT is an object map.
// Reference: page 44
type OmapPhysT struct {
	// The object's header. (page 45)
	OmO ObjPhysT

	// The object map's flags. (page 45)
	OmFlags uint32

	// The number of snapshots that this object map has. (page 45)
	OmSnapCount uint32

	// The type of tree being used for object mappings. (page 45)
	OmTreeType uint32

	// The type of tree being used for snapshots. (page 45)
	OmSnapshotTreeType uint32

	// The virtual object identifier of the tree being used for object mappings. (page 45)
	OmTreeOid OidT

	// The virtual object identifier of the tree being used to hold snapshot information. (page 45)
	OmSnapshotTreeOid OidT

	// The transaction identifier of the most recent snapshot that's stored in this object map. (page 45)
	OmMostRecentSnap XidT

	// The smallest transaction identifier for an in-progress revert. (page 46)
	OmPendingRevertMin XidT

	// The largest transaction identifier for an in-progress revert. (page 46)
	OmPendingRevertMax XidT
}

// OmapKeyT is a key used to access an entry in the object map.
// Reference: page 46
type OmapKeyT struct {
	// The object identifier. (page 46)
	OkOid OidT

	// The transaction identifier. (page 46)
	OkXid XidT
}

// OmapValT is a value in the object map.
// Reference: page 46
type OmapValT struct {
	// A bit field of flags. (page 46)
	OvFlags uint32

	// The size, in bytes, of the object. (page 47)
	OvSize uint32

	// The address of the object. (page 47)
	OvPaddr Paddr
}

// OmapSnapshotT is information about a snapshot of an object map.
// Reference: page 47
type OmapSnapshotT struct {
	// The snapshot's flags. (page 47)
	OmsFlags uint32

	// Reserved. (page 47)
	OmsPad uint32

	// Reserved. (page 47-48)
	OmsOid OidT
}

// Object Map Value Flags (page 48)

const OmapValDeleted uint32 = 0x00000001
const OmapValSaved uint32 = 0x00000002
const OmapValEncrypted uint32 = 0x00000004
const OmapValNoheader uint32 = 0x00000008
const OmapValCryptoGeneration uint32 = 0x00000010

// Snapshot Flags (page 49)

const OmapSnapshotDeleted uint32 = 0x00000001
const OmapSnapshotReverted uint32 = 0x00000002

// Object Map Flags (pages 49-50)

const OmapManuallyManaged uint32 = 0x00000001
const OmapEncrypting uint32 = 0x00000002
const OmapDecrypting uint32 = 0x00000004
const OmapKeyrolling uint32 = 0x00000008
const OmapCryptoGeneration uint32 = 0x00000010
const OmapValidFlags uint32 = 0x0000001f

// Object Map Constants (page 50)

// OmapMaxSnapCount is the maximum number of snapshots that can be stored in an object map.
// Reference: page 50
const OmapMaxSnapCount uint32 = math.MaxUint32

// Object Map Reaper Phases (page 50)

const OmapReapPhaseMapTree uint32 = 1
const OmapReapPhaseSnapshotTree uint32 = 2

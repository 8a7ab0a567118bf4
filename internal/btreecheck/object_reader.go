package btreecheck

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-apfs/internal/parsers/objects"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// Object carries the identity fields every on-disk object's header exposes,
// independent of what kind of object it turns out to be.
type Object struct {
	BlockNr uint64
	Oid     types.OidT
	Type    uint32
	Subtype uint32
	Xid     types.XidT
}

// ObjectReader materializes one physical block and verifies its checksum
// and object header, mirroring spec.md's imported `read_object` contract.
// Logical-to-physical translation (the omap? parameter of read_object) is
// handled one layer up, in readNode, because it requires a fully-built omap
// Btree to query against rather than anything ObjectReader itself needs to
// know about.
type ObjectReader interface {
	ReadBlock(blockNr uint64) ([]byte, error)
	BlockSize() uint32
}

// rawBlockSource is satisfied by internal/services.ContainerReader.
type rawBlockSource interface {
	ReadBlock(blockNumber uint64) ([]byte, error)
	GetBlockSize() uint32
}

// containerObjectReader adapts the teacher's existing ContainerReader (raw,
// cached block I/O over a container image) to ObjectReader.
type containerObjectReader struct {
	src rawBlockSource
}

// NewContainerObjectReader wraps any raw block source (concretely,
// *services.ContainerReader) as an ObjectReader for the checker.
func NewContainerObjectReader(src rawBlockSource) ObjectReader {
	return &containerObjectReader{src: src}
}

func (r *containerObjectReader) ReadBlock(blockNr uint64) ([]byte, error) {
	return r.src.ReadBlock(blockNr)
}

func (r *containerObjectReader) BlockSize() uint32 {
	return r.src.GetBlockSize()
}

// readObjectHeader parses the 32-byte obj_phys_t header at the start of raw
// and verifies its Fletcher-64 checksum, returning the decoded Object.
func readObjectHeader(raw []byte, blockNr uint64) (types.ObjPhysT, Object, error) {
	if len(raw) < 32 {
		return types.ObjPhysT{}, Object{}, structuralErrorf("object header", blockNr,
			"block too small for object header: %d bytes", len(raw))
	}

	var hdr types.ObjPhysT
	copy(hdr.OChecksum[:], raw[0:8])
	hdr.OOid = types.OidT(binary.LittleEndian.Uint64(raw[8:16]))
	hdr.OXid = types.XidT(binary.LittleEndian.Uint64(raw[16:24]))
	hdr.OType = binary.LittleEndian.Uint32(raw[24:28])
	hdr.OSubtype = binary.LittleEndian.Uint32(raw[28:32])

	verifier := objects.NewChecksumInspector(&hdr, raw)
	if !verifier.VerifyChecksum() {
		return types.ObjPhysT{}, Object{}, structuralErrorf("object header", blockNr,
			"checksum mismatch")
	}

	obj := Object{
		BlockNr: blockNr,
		Oid:     hdr.OOid,
		Type:    hdr.OType & types.ObjectTypeMask,
		Subtype: hdr.OSubtype,
		Xid:     hdr.OXid,
	}
	return hdr, obj, nil
}

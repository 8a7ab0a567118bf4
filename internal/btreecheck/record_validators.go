package btreecheck

import "fmt"

// RecordValidator performs the structural-shape check spec.md's leaf-record
// validators are responsible for (parse_inode_record, parse_dentry_record,
// etc). These intentionally stay shallow — shape and minimum-length checks
// only — since semantic validation of file-system record contents is an
// external collaborator's concern the core merely calls into (spec.md §1,
// §6). The phys_ext validator alone returns a derived id, which replaces
// the walker's ordering cursor for extentref trees.
type RecordValidator func(raw []byte) (derivedID uint64, err error)

// Minimum structural sizes for each catalog record kind. These are the
// fixed, non-xfields-bearing prefix every instance of the record must carry;
// records are free to be longer (extended fields, variable-length content).
const (
	minInodeRecordSize      = 56 // parent_id,private_id,*_time,internal_flags,nchildren/nlink,default_protection_class,write_generation_counter,bsd_flags,owner,group,mode,pad1,uncompressed_size
	minDentryRecordSize     = 10 // file_id(8) + flags(2); date_added and xfields may follow
	minXattrRecordSize      = 4  // flags(2) + xdata_len(2)
	minSiblingLinkSize      = 10 // parent_id(8) + name_len(2)
	minSiblingMapSize       = 8  // file_id(8)
	minDstreamIDSize        = 4  // refcnt(4)
	minFileExtentRecordSize = 24 // length_and_flags(8) + phys_block_num(8) + crypto_id(8)
	minPhysExtRecordSize    = 20 // length_and_kind(8) + owning_obj_id(8) + refcnt(4)
)

func requireMinLen(raw []byte, min int, what string) error {
	if len(raw) < min {
		return fmt.Errorf("%s record too short: got %d bytes, need at least %d", what, len(raw), min)
	}
	return nil
}

func validateInodeRecord(raw []byte) (uint64, error) {
	return 0, requireMinLen(raw, minInodeRecordSize, "inode")
}

func validateDentryRecord(raw []byte) (uint64, error) {
	return 0, requireMinLen(raw, minDentryRecordSize, "dentry")
}

func validateXattrRecord(raw []byte) (uint64, error) {
	return 0, requireMinLen(raw, minXattrRecordSize, "xattr")
}

func validateSiblingLinkRecord(raw []byte) (uint64, error) {
	return 0, requireMinLen(raw, minSiblingLinkSize, "sibling-link")
}

func validateSiblingMapRecord(raw []byte) (uint64, error) {
	return 0, requireMinLen(raw, minSiblingMapSize, "sibling-map")
}

func validateDstreamIDRecord(raw []byte) (uint64, error) {
	return 0, requireMinLen(raw, minDstreamIDSize, "dstream-id")
}

func validateFileExtentRecord(raw []byte) (uint64, error) {
	return 0, requireMinLen(raw, minFileExtentRecordSize, "file-extent")
}

// validatePhysExtRecord validates an extentref leaf value (j_phys_ext_val_t)
// and derives the extent's end block number, which replaces last_key.id so
// the walker's ordering cursor tracks physical-extent end boundaries
// (spec.md §4.4 step 5).
func validatePhysExtRecord(raw []byte, startBlock uint64) (uint64, error) {
	if err := requireMinLen(raw, minPhysExtRecordSize, "phys-ext"); err != nil {
		return 0, err
	}
	lengthAndKind := leUint64(raw[0:8])
	const physExtLenMask = 0x0FFFFFFFFFFFFFFF
	blockCount := lengthAndKind & physExtLenMask
	return startBlock + blockCount, nil
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// unknownRecordTypeLabel names a catalog record type for report_unknown
// when no validator recognizes it, rather than treating it as corruption.
func unknownRecordTypeLabel(recordType uint32) string {
	return fmt.Sprintf("catalog record type %d", recordType)
}

// catalogValidatorFor dispatches on a decoded catalog key's record type.
// Unknown record types are reported via the distinct "unknown feature"
// channel (spec.md §7) rather than treated as structural corruption.
func catalogValidatorFor(recordType uint32) (func([]byte) (uint64, error), bool) {
	switch recordType {
	case jObjTypeInode:
		return validateInodeRecord, true
	case jObjTypeDirRec:
		return validateDentryRecord, true
	case jObjTypeXattr:
		return validateXattrRecord, true
	case jObjTypeSiblingLink:
		return validateSiblingLinkRecord, true
	case jObjTypeSiblingMap:
		return validateSiblingMapRecord, true
	case jObjTypeDstreamID:
		return validateDstreamIDRecord, true
	case jObjTypeFileExtent:
		return validateFileExtentRecord, true
	default:
		return nil, false
	}
}

package btreecheck

import "fmt"

// StructuralError reports a fatal violation of an on-disk B-tree invariant.
// The checker returns these instead of aborting the process directly so that
// the library stays composable and testable; cmd/ is responsible for turning
// a returned *StructuralError into a nonzero process exit.
type StructuralError struct {
	Subsystem string // e.g. "B-tree", "free-space reconciler", "object map"
	BlockNr   uint64
	Message   string
}

func (e *StructuralError) Error() string {
	if e.BlockNr != 0 {
		return fmt.Sprintf("%s: %s (block %d)", e.Subsystem, e.Message, e.BlockNr)
	}
	return fmt.Sprintf("%s: %s", e.Subsystem, e.Message)
}

func structuralErrorf(subsystem string, blockNr uint64, format string, args ...interface{}) error {
	return &StructuralError{Subsystem: subsystem, BlockNr: blockNr, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedFeatureError marks on-disk content this checker deliberately
// doesn't validate (encryption, populated snapshots, unknown record kinds),
// distinguishing "unsupported" from "corrupt".
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported feature: %s", e.Feature)
}

// errEagain and errNodata are control signals local to the query engine.
// errEagain is consumed inside BtreeQuery; errNodata is what BtreeQuery
// returns when no record matches, and OmapLookup/ExtentrefLookup turn it into
// a *StructuralError so it never reaches their callers.
var (
	errEagain = fmt.Errorf("query: eagain")
	errNodata = fmt.Errorf("query: nodata")
)

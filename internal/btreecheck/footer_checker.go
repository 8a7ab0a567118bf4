package btreecheck

import "encoding/binary"

// sizeof(omap_key_t)=16, sizeof(omap_val_t)=16, sizeof(j_phys_ext_key_t)=8,
// sizeof(j_phys_ext_val_t)=20 (matching minPhysExtRecordSize in
// record_validators.go).
const (
	omapKeySize   = 16
	omapValSize   = 16
	extrefKeySize = 8
	extrefValSize = 20
)

// footerInfo is the decoded btree_info_t trailer carried by the root node's
// block (spec.md §3/§4.5).
type footerInfo struct {
	Flags      uint32
	NodeSize   uint32
	KeySize    uint32
	ValSize    uint32
	LongestKey uint32
	LongestVal uint32
	KeyCount   uint64
	NodeCount  uint64
}

// parseFooter decodes the 40-byte InfoFooter from the tail of the root
// node's raw block.
func parseFooter(raw []byte, blockNr uint64) (footerInfo, error) {
	if len(raw) < infoFooterSize {
		return footerInfo{}, structuralErrorf("footer checker", blockNr, "block too small to carry an info footer")
	}
	f := raw[len(raw)-infoFooterSize:]
	return footerInfo{
		Flags:      binary.LittleEndian.Uint32(f[0:4]),
		NodeSize:   binary.LittleEndian.Uint32(f[4:8]),
		KeySize:    binary.LittleEndian.Uint32(f[8:12]),
		ValSize:    binary.LittleEndian.Uint32(f[12:16]),
		LongestKey: binary.LittleEndian.Uint32(f[16:20]),
		LongestVal: binary.LittleEndian.Uint32(f[20:24]),
		KeyCount:   binary.LittleEndian.Uint64(f[24:32]),
		NodeCount:  binary.LittleEndian.Uint64(f[32:40]),
	}, nil
}

// checkFooter is the Footer Checker (C5), run once the whole tree has been
// walked: it re-reads the root block's InfoFooter and cross-checks it
// against the statistics the Subtree Walker accumulated, plus the
// per-personality fixed key/value sizes spec.md §4.5 tabulates.
func (t *Btree) checkFooter() error {
	blockNr := t.Root.Object.BlockNr
	info, err := parseFooter(t.Root.raw, blockNr)
	if err != nil {
		return err
	}

	if !t.Root.IsRoot() {
		return structuralErrorf("footer checker", blockNr, "root node is missing the ROOT flag")
	}
	if info.NodeSize != t.blockSize {
		return structuralErrorf("footer checker", blockNr, "info footer node size %d does not match block size %d", info.NodeSize, t.blockSize)
	}
	if info.KeyCount != t.KeyCount {
		return structuralErrorf("footer checker", blockNr, "info footer key count %d does not match observed %d", info.KeyCount, t.KeyCount)
	}
	if info.NodeCount != t.NodeCount {
		return structuralErrorf("footer checker", blockNr, "info footer node count %d does not match observed %d", info.NodeCount, t.NodeCount)
	}

	switch t.Kind {
	case KindOmap:
		if info.KeySize != omapKeySize || info.ValSize != omapValSize {
			return structuralErrorf("footer checker", blockNr, "object map must declare fixed key/value size %d/%d, got %d/%d", omapKeySize, omapValSize, info.KeySize, info.ValSize)
		}
		if info.LongestKey != omapKeySize || info.LongestVal != omapValSize {
			return structuralErrorf("footer checker", blockNr, "object map longest key/value must equal %d/%d, got %d/%d", omapKeySize, omapValSize, info.LongestKey, info.LongestVal)
		}
	case KindCatalog:
		if info.KeySize != 0 || info.ValSize != 0 {
			return structuralErrorf("footer checker", blockNr, "%s must declare variable key/value size (0/0), got %d/%d", t.Kind, info.KeySize, info.ValSize)
		}
		if info.LongestKey < t.LongestKey {
			return structuralErrorf("footer checker", blockNr, "info footer longest key %d is smaller than observed %d", info.LongestKey, t.LongestKey)
		}
		if info.LongestVal < t.LongestVal {
			return structuralErrorf("footer checker", blockNr, "info footer longest value %d is smaller than observed %d", info.LongestVal, t.LongestVal)
		}
	case KindExtentref:
		if info.KeySize != 0 || info.ValSize != 0 {
			return structuralErrorf("footer checker", blockNr, "%s must declare variable key/value size (0/0), got %d/%d", t.Kind, info.KeySize, info.ValSize)
		}
		if info.LongestKey != extrefKeySize || info.LongestVal != extrefValSize {
			return structuralErrorf("footer checker", blockNr, "extent reference tree longest key/value must equal %d/%d, got %d/%d", extrefKeySize, extrefValSize, info.LongestKey, info.LongestVal)
		}
	case KindSnapMeta:
		if info.KeySize != 0 || info.ValSize != 0 {
			return structuralErrorf("footer checker", blockNr, "%s must declare variable key/value size (0/0), got %d/%d", t.Kind, info.KeySize, info.ValSize)
		}
		if info.LongestKey != 0 || info.LongestVal != 0 {
			return &UnsupportedFeatureError{Feature: "snapshot metadata tree with non-empty footer statistics"}
		}
	}

	return nil
}

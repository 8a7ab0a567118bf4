package btreecheck

import "testing"

func TestReadOmapKey(t *testing.T) {
	raw := omapKeyBytes(42, 7)
	key, err := ReadOmapKey(raw)
	if err != nil {
		t.Fatalf("ReadOmapKey: %v", err)
	}
	if key.ID != 42 || key.Number != 7 {
		t.Fatalf("got ID=%d Number=%d, want 42/7", key.ID, key.Number)
	}
}

func TestReadOmapKey_TooShort(t *testing.T) {
	if _, err := ReadOmapKey(make([]byte, 15)); err == nil {
		t.Fatalf("expected error for undersized omap key")
	}
}

func TestReadCatKey_InodeHasNoSuffix(t *testing.T) {
	raw := make([]byte, 8)
	putLE64(raw, (uint64(jObjTypeInode)<<objTypeShift)|123)

	key, err := ReadCatKey(raw)
	if err != nil {
		t.Fatalf("ReadCatKey: %v", err)
	}
	if key.ID != 123 || key.Type != jObjTypeInode || key.Name != nil {
		t.Fatalf("unexpected decode: %+v", key)
	}
}

func TestReadCatKey_XattrCarriesRawName(t *testing.T) {
	raw := make([]byte, 8+4)
	putLE64(raw[:8], (uint64(jObjTypeXattr)<<objTypeShift)|5)
	copy(raw[8:], []byte("xatr"))

	key, err := ReadCatKey(raw)
	if err != nil {
		t.Fatalf("ReadCatKey: %v", err)
	}
	if string(key.Name) != "xatr" {
		t.Fatalf("got name %q, want xatr", key.Name)
	}
}

func TestReadCatKey_DirRecSkipsHashPrefix(t *testing.T) {
	raw := make([]byte, 8+4+5)
	putLE64(raw[:8], (uint64(jObjTypeDirRec)<<objTypeShift)|9)
	// bytes [8:12) are the hash/length prefix this decoder skips over.
	copy(raw[12:], []byte("hello"))

	key, err := ReadCatKey(raw)
	if err != nil {
		t.Fatalf("ReadCatKey: %v", err)
	}
	if string(key.Name) != "hello" {
		t.Fatalf("got name %q, want hello", key.Name)
	}
}

func TestReadCatKey_FileExtentCarriesOffset(t *testing.T) {
	raw := make([]byte, 8+8)
	putLE64(raw[:8], (uint64(jObjTypeFileExtent)<<objTypeShift)|3)
	putLE64(raw[8:16], 4096)

	key, err := ReadCatKey(raw)
	if err != nil {
		t.Fatalf("ReadCatKey: %v", err)
	}
	if key.Number != 4096 {
		t.Fatalf("got offset %d, want 4096", key.Number)
	}
}

func TestReadCatKey_TooShort(t *testing.T) {
	if _, err := ReadCatKey(make([]byte, 7)); err == nil {
		t.Fatalf("expected error for undersized catalog key")
	}
}

func TestReadExtentrefKey(t *testing.T) {
	raw := make([]byte, 8)
	putLE64(raw, (uint64(5)<<objTypeShift)|777)

	key, err := ReadExtentrefKey(raw)
	if err != nil {
		t.Fatalf("ReadExtentrefKey: %v", err)
	}
	if key.ID != 777 || key.Type != 5 {
		t.Fatalf("got ID=%d Type=%d, want 777/5", key.ID, key.Type)
	}
}

func TestCompareKeys_OrdersByIDThenTypeThenNumber(t *testing.T) {
	low := Key{ID: 1}
	high := Key{ID: 2}
	if CompareKeys(low, high, nil) >= 0 {
		t.Fatalf("expected low < high by ID")
	}

	sameID1 := Key{ID: 1, Type: 1}
	sameID2 := Key{ID: 1, Type: 2}
	if CompareKeys(sameID1, sameID2, nil) >= 0 {
		t.Fatalf("expected type 1 < type 2 at equal ID")
	}

	sameIDType1 := Key{ID: 1, Type: 1, Number: 5}
	sameIDType2 := Key{ID: 1, Type: 1, Number: 9}
	if CompareKeys(sameIDType1, sameIDType2, nil) >= 0 {
		t.Fatalf("expected number 5 < number 9 at equal ID/type")
	}
}

func TestCompareKeys_NilNameComparesEqual(t *testing.T) {
	withName := Key{ID: 1, Type: jObjTypeDirRec, Name: []byte("a")}
	withoutName := Key{ID: 1, Type: jObjTypeDirRec}
	if CompareKeys(withoutName, withName, ByteNameComparer{}) != 0 {
		t.Fatalf("expected a nil name to compare equal to a non-nil name")
	}
	if CompareKeys(withName, withoutName, ByteNameComparer{}) != 0 {
		t.Fatalf("expected a non-nil name to compare equal to a nil name")
	}
}

func TestCompareKeys_XattrNamesCompareAsRawBytes(t *testing.T) {
	a := Key{ID: 1, Type: jObjTypeXattr, Name: []byte("A")}
	b := Key{ID: 1, Type: jObjTypeXattr, Name: []byte("a")}
	// Even with a case-folding comparer supplied, xattr names must be
	// compared byte-for-byte per spec.md's "opaque byte sequence" rule.
	if CompareKeys(a, b, UnicodeNameComparer{CaseInsensitive: true}) == 0 {
		t.Fatalf("expected xattr name comparison to ignore the supplied case-insensitive comparer")
	}
}

func TestUnicodeNameComparer_CaseInsensitiveFolds(t *testing.T) {
	c := UnicodeNameComparer{CaseInsensitive: true}
	if c.Compare([]byte("Hello"), []byte("hello")) != 0 {
		t.Fatalf("expected case-insensitive comparer to treat Hello == hello")
	}
}

func TestUnicodeNameComparer_CaseSensitiveDistinguishes(t *testing.T) {
	c := UnicodeNameComparer{CaseInsensitive: false}
	if c.Compare([]byte("Hello"), []byte("hello")) == 0 {
		t.Fatalf("expected case-sensitive comparer to distinguish Hello and hello")
	}
}

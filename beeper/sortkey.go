package beeper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SortKey is a message ordering key that the API sends either as a string or
// as an integer. The original representation is kept so it round-trips.
//
// The zero value is an absent key. Struct fields of this type should be
// tagged omitzero so that a missing key stays missing when re-encoded.
type SortKey struct {
	str    string
	num    int64
	isNum  bool
	isNull bool
	set    bool
}

// StringSortKey returns a string-typed key
func StringSortKey(s string) SortKey {
	return SortKey{str: s, set: true}
}

// IntSortKey returns an integer-typed key
func IntSortKey(n int64) SortKey {
	return SortKey{num: n, isNum: true, set: true}
}

// IsInt reports whether the key was sent as a number
func (k SortKey) IsInt() bool {
	return k.isNum
}

// IsZero reports whether the key was absent
func (k SortKey) IsZero() bool {
	return !k.set
}

// IsNull reports whether the key was sent as JSON null
func (k SortKey) IsNull() bool {
	return k.isNull
}

// Int returns the integer value and whether the key is an integer
func (k SortKey) Int() (int64, bool) {
	return k.num, k.isNum
}

// String returns the key as text regardless of its wire type
func (k SortKey) String() string {
	if k.isNum {
		return strconv.FormatInt(k.num, 10)
	}
	return k.str
}

// MarshalJSON writes the key back in the type it was received as
func (k SortKey) MarshalJSON() ([]byte, error) {
	switch {
	case k.isNull, !k.set:
		return []byte("null"), nil
	case k.isNum:
		return []byte(strconv.FormatInt(k.num, 10)), nil
	default:
		return json.Marshal(k.str)
	}
}

// UnmarshalJSON accepts a JSON string, integer or null
func (k *SortKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*k = SortKey{isNull: true, set: true}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = StringSortKey(s)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("sort key must be a string or integer, got %s", data)
	}
	*k = IntSortKey(n)
	return nil
}

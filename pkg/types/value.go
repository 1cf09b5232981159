package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ToFloat converts a scalar value to float64 for numeric operations.
// Booleans and strings are not numeric.
func ToFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int16:
		return float64(val), true
	case int8:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint:
		return float64(val), true
	}
	return 0, false
}

// IsNumeric reports whether v is a non-null numeric scalar.
func IsNumeric(v interface{}) bool {
	_, ok := ToFloat(v)
	return ok
}

// Stringify returns the string representation of a scalar, matching the
// representation used for `contains` comparisons and pivot column names.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Compare orders two scalars for min/max style comparisons: numerics
// compare numerically, strings lexicographically, and mismatched kinds
// fall back to string comparison of their representations.
func Compare(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	fa, aOk := ToFloat(a)
	fb, bOk := ToFloat(b)
	if aOk && bOk {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	sa := Stringify(a)
	sb := Stringify(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

// Canonical key encoding. Each scalar kind carries its own tag so that,
// for example, the string "1", the number 1, and the boolean true never
// collide inside a group-key tuple. NULL has a dedicated sentinel.
// String payloads are length-prefixed: they are the only kind that can
// carry arbitrary bytes, and the prefix keeps a payload embedding the
// separator or a tag from merging two distinct tuples.
const (
	keyTagNull   = "\x00N"
	keyTagNumber = "\x00F"
	keyTagBool   = "\x00B"
	keyTagString = "\x00S"

	// keySeparator joins tuple components; it cannot occur inside a tag
	// or a non-string payload.
	keySeparator = "\x1f"
)

// CanonicalKey returns a canonical string encoding of a scalar for use
// as a group-key component.
func CanonicalKey(v interface{}) string {
	if v == nil {
		return keyTagNull
	}
	if f, ok := ToFloat(v); ok {
		return keyTagNumber + strconv.FormatFloat(f, 'g', -1, 64)
	}
	if b, ok := v.(bool); ok {
		if b {
			return keyTagBool + "1"
		}
		return keyTagBool + "0"
	}
	s := Stringify(v)
	return keyTagString + strconv.Itoa(len(s)) + ":" + s
}

// GroupKey produces a deterministic map key from a tuple of scalars.
func GroupKey(vals []interface{}) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = CanonicalKey(v)
	}
	return strings.Join(parts, keySeparator)
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float64", 3.5, 3.5, true},
		{"int", 7, 7, true},
		{"int64", int64(-2), -2, true},
		{"uint32", uint32(9), 9, true},
		{"string", "3.5", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "null", Stringify(nil))
	assert.Equal(t, "abc", Stringify("abc"))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "25", Stringify(25.0))
	assert.Equal(t, "2.5", Stringify(2.5))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare(nil, nil))
	assert.Equal(t, -1, Compare(nil, 1.0))
	assert.Equal(t, 1, Compare(1.0, nil))
	assert.Equal(t, -1, Compare(1.0, 2.0))
	assert.Equal(t, 0, Compare(2, 2.0))
	assert.Equal(t, -1, Compare("a", "b"))
}

func TestCanonicalKey_DistinguishesKinds(t *testing.T) {
	// The string "1" and the number 1 must produce different keys.
	assert.NotEqual(t, CanonicalKey("1"), CanonicalKey(1.0))
	// nil and the string "null" must produce different keys.
	assert.NotEqual(t, CanonicalKey(nil), CanonicalKey("null"))
	// true and the string "true" must produce different keys.
	assert.NotEqual(t, CanonicalKey(true), CanonicalKey("true"))
}

func TestCanonicalKey_EqualNumbers(t *testing.T) {
	// Integer and float representations of the same number group together.
	assert.Equal(t, CanonicalKey(1), CanonicalKey(1.0))
}

func TestGroupKey(t *testing.T) {
	a := GroupKey([]interface{}{"North", 1.0})
	b := GroupKey([]interface{}{"North", 1.0})
	c := GroupKey([]interface{}{"North", "1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// Adjacent tuple elements must not bleed into each other.
	d := GroupKey([]interface{}{"ab", "c"})
	e := GroupKey([]interface{}{"a", "bc"})
	assert.NotEqual(t, d, e)
}

func TestGroupKey_SeparatorBytesInStrings(t *testing.T) {
	// JSON strings can carry 0x1f and 0x00, the bytes the encoding
	// itself uses. A payload embedding separator+tag must not shift the
	// component boundary and merge two distinct tuples.
	a := GroupKey([]interface{}{"x\x1f\x00Sy", "z"})
	b := GroupKey([]interface{}{"x", "y\x1f\x00Sz"})
	assert.NotEqual(t, a, b)

	// A one-element tuple must not encode like a two-element one.
	c := GroupKey([]interface{}{"x\x1f\x00Sy"})
	d := GroupKey([]interface{}{"x", "y"})
	assert.NotEqual(t, c, d)
}

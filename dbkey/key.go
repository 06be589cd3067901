// Package dbkey implements the totally-ordered, kind-locked record key used
// throughout the B+Tree storage engine.
//
// A key is a JSON-compatible scalar: either a string (compared
// lexicographically) or a number (compared numerically). A single tree may
// hold only one kind of key at a time; the kind is fixed by whichever key is
// inserted first.
package dbkey

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which scalar type a Key holds.
type Kind int

const (
	// KindUnset marks a Key zero value; no tree should ever store one.
	KindUnset Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unset"
	}
}

// Key is an immutable, comparable record key.
type Key struct {
	kind Kind
	str  string
	num  float64
}

// String constructs a string-kind key.
func String(s string) Key { return Key{kind: KindString, str: s} }

// Number constructs a number-kind key.
func Number(n float64) Key { return Key{kind: KindNumber, num: n} }

// Kind reports which scalar kind this key holds.
func (k Key) Kind() Kind { return k.kind }

// IsZero reports whether k is the unset zero value.
func (k Key) IsZero() bool { return k.kind == KindUnset }

// AsString returns the underlying string; only meaningful when Kind() == KindString.
func (k Key) AsString() string { return k.str }

// AsNumber returns the underlying number; only meaningful when Kind() == KindNumber.
func (k Key) AsNumber() float64 { return k.num }

// Raw returns the key as a plain Go value suitable for JSON re-encoding.
func (k Key) Raw() any {
	switch k.kind {
	case KindString:
		return k.str
	case KindNumber:
		return k.num
	default:
		return nil
	}
}

func (k Key) GoString() string {
	switch k.kind {
	case KindString:
		return fmt.Sprintf("%q", k.str)
	case KindNumber:
		return fmt.Sprintf("%v", k.num)
	default:
		return "<unset>"
	}
}

// FromAny converts a JSON-compatible scalar into a Key. Only strings and
// numbers (float64, the shape produced by encoding/json and json.Number) are
// accepted; anything else is rejected as an invalid key.
func FromAny(v any) (Key, error) {
	switch x := v.(type) {
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Key{}, fmt.Errorf("dbkey: %q is not a valid number: %w", x, err)
		}
		return Number(f), nil
	default:
		return Key{}, fmt.Errorf("dbkey: key must be a string or number, got %T", v)
	}
}

// Compare returns -1, 0 or 1 according to whether k is less than, equal to,
// or greater than other. Comparing keys of different kinds is a programming
// error in the caller (the tree must lock its kind on first insert); Compare
// panics in that case rather than silently produce a meaningless ordering.
func (k Key) Compare(other Key) int {
	if k.kind != other.kind {
		panic(fmt.Sprintf("dbkey: cannot compare %s key with %s key", k.kind, other.kind))
	}
	switch k.kind {
	case KindString:
		switch {
		case k.str < other.str:
			return -1
		case k.str > other.str:
			return 1
		default:
			return 0
		}
	case KindNumber:
		switch {
		case k.num < other.num:
			return -1
		case k.num > other.num:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool { return k.Compare(other) < 0 }

// Equal reports whether k and other are the same key.
func (k Key) Equal(other Key) bool { return k.kind == other.kind && k.Compare(other) == 0 }

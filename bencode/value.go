package bencode

import "bytes"

// MaxDepth is the deepest list/dictionary nesting accepted by Decode and Encode.
const MaxDepth = 50

// Value is a decoded bencode value: String, Int, List or Dict.
type Value interface {
	isValue()
}

// String is a bencoded byte string. It is not guaranteed to be valid UTF-8.
type String []byte

// Int is a bencoded integer.
type Int int64

// List is an ordered sequence of values.
type List []Value

// Dict maps raw byte keys to values. Go map order is random, Encode sorts
// the keys before writing them.
type Dict map[string]Value

func (String) isValue() {}
func (Int) isValue()    {}
func (List) isValue()   {}
func (Dict) isValue()   {}

// Equal reports whether a and b hold the same tree. A nil String or List
// equals an empty one.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case String:
		b, ok := b.(String)
		return ok && bytes.Equal(a, b)
	case Int:
		b, ok := b.(Int)
		return ok && a == b
	case List:
		b, ok := b.(List)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Dict:
		b, ok := b.(Dict)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

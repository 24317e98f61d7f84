package bencode

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Display converts v into plain Go values suitable for encoding/json:
// string, int64, []any and map[string]any.
//
// Byte strings are decoded lossily, invalid UTF-8 turns into U+FFFD. The
// result is only meant for people to read; hashes and tracker parameters must
// be built from the original Value. Distinct keys that decode to the same
// text are kept apart with a " (n)" suffix, assigned in raw key order.
func Display(v Value) any {
	switch v := v.(type) {
	case String:
		return lossyString(v)
	case Int:
		return int64(v)
	case List:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, Display(item))
		}
		return out
	case Dict:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		out := make(map[string]any, len(v))
		for _, k := range keys {
			out[displayKey(out, k)] = Display(v[k])
		}
		return out
	default:
		return nil
	}
}

func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

func displayKey(taken map[string]any, raw string) string {
	key := lossyString([]byte(raw))
	if _, ok := taken[key]; !ok {
		return key
	}
	for n := 1; ; n++ {
		candidate := key + " (" + strconv.Itoa(n) + ")"
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

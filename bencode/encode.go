package bencode

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
)

// Encode serializes v into its canonical form: dictionary keys are written in
// ascending raw byte order no matter how the Dict was built.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) error {
	switch v := v.(type) {
	case String:
		buf.WriteString(strconv.Itoa(len(v)))
		buf.WriteByte(':')
		buf.Write(v)

	case Int:
		buf.WriteByte('i')
		buf.WriteString(strconv.FormatInt(int64(v), 10))
		buf.WriteByte('e')

	case List:
		if depth >= MaxDepth {
			return &EncodingError{Reason: "nesting too deep"}
		}
		buf.WriteByte('l')
		for _, item := range v {
			if err := encodeValue(buf, item, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('e')

	case Dict:
		if depth >= MaxDepth {
			return &EncodingError{Reason: "nesting too deep"}
		}

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		// string comparison in Go is byte-wise
		slices.Sort(keys)

		buf.WriteByte('d')
		for _, k := range keys {
			buf.WriteString(strconv.Itoa(len(k)))
			buf.WriteByte(':')
			buf.WriteString(k)
			if err := encodeValue(buf, v[k], depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('e')

	default:
		return &EncodingError{Reason: fmt.Sprintf("unsupported value %T", v)}
	}
	return nil
}

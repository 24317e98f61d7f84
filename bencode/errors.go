package bencode

import "fmt"

// Reason tags why a ParseError was raised.
type Reason string

const (
	ReasonBadLength    Reason = "bad length prefix"
	ReasonUnterminated Reason = "unterminated construct"
	ReasonNonDigit     Reason = "non-digit where digit expected"
	ReasonBadInteger   Reason = "malformed integer"
	ReasonDuplicateKey Reason = "duplicate key"
	ReasonKeyType      Reason = "wrong key type"
	ReasonUnexpected   Reason = "unexpected byte"
	ReasonTooDeep      Reason = "nesting too deep"
	ReasonTrailingData Reason = "trailing data"
)

// ParseError reports malformed bencode input.
type ParseError struct {
	Offset int    // byte offset into the input where the problem was found
	Reason Reason //
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bencode: %s at offset %d", e.Reason, e.Offset)
}

// EncodingError is returned by Encode for trees it cannot serialize.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "bencode: cannot encode: " + e.Reason
}

package torrentparser

import "fmt"

// SchemaError reports well-formed bencode that does not describe a supported
// torrent. Field uses dotted names such as "info.piece length".
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "invalid torrent: " + e.Reason
	}
	return fmt.Sprintf("invalid torrent: %s: %s", e.Field, e.Reason)
}

// IOError wraps a failure to read a torrent file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

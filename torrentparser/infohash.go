package torrentparser

import (
	"crypto/sha1"
	"fmt"

	"github.com/givxl33t/bittorrent-announce-go/bencode"
)

// HashInfo re-encodes the info dictionary canonically and returns its SHA-1.
// The key order of the original file does not affect the result.
func HashInfo(info bencode.Value) (InfoHash, error) {
	encoded, err := bencode.Encode(info)
	if err != nil {
		return InfoHash{}, fmt.Errorf("encoding info dict: %w", err)
	}

	return sha1.Sum(encoded), nil
}

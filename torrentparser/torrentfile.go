package torrentparser

import (
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"github.com/givxl33t/bittorrent-announce-go/bencode"
)

// length of a SHA-1 hash
const hashLen = 20

// InfoHash is the SHA-1 digest of the canonically encoded info dictionary.
type InfoHash [hashLen]byte

// Hex returns the lowercase hex form used for display.
func (h InfoHash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h InfoHash) String() string {
	return h.Hex()
}

// TorrentFile represents a single-file torrent, parsed from a .torrent file.
//
// 20-bytes SHA1 hashes are formatted as 20-byte arrays for easy
// comparison of piece hashes
//
// The InfoHash is the SHA1 hash of the canonically re-encoded info dictionary,
// not of the bytes found in the file.
type TorrentFile struct {
	Announce     string
	AnnounceList []string // BEP0012, flattened; empty when the file has none
	Name         string
	Length       int64
	PieceLength  int64
	Pieces       []byte // concatenated piece hashes, exactly as stored
	PieceHashes  [][hashLen]byte
	InfoHash     InfoHash
	Info         bencode.Dict
}

// Parse decodes a raw torrent file and projects it into a TorrentFile.
func Parse(data []byte) (*TorrentFile, error) {
	root, err := bencode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding torrent: %w", err)
	}

	top, ok := root.(bencode.Dict)
	if !ok {
		return nil, &SchemaError{Field: "", Reason: "top-level value is not a dictionary"}
	}

	announce, err := textField(top, "announce", "announce")
	if err != nil {
		return nil, err
	}

	announceList, err := parseAnnounceList(top)
	if err != nil {
		return nil, err
	}

	infoValue, ok := top["info"]
	if !ok {
		return nil, &SchemaError{Field: "info", Reason: "missing"}
	}
	info, ok := infoValue.(bencode.Dict)
	if !ok {
		return nil, &SchemaError{Field: "info", Reason: "not a dictionary"}
	}

	tf := &TorrentFile{
		Announce:     announce,
		AnnounceList: announceList,
	}

	if err := tf.appendInfo(info); err != nil {
		return nil, err
	}

	return tf, nil
}

// PieceSize returns the length of piece i. All pieces are PieceLength long
// except the last one, which holds the remainder.
func (t *TorrentFile) PieceSize(i int) int64 {
	if i < 0 || i >= len(t.PieceHashes) {
		return 0
	}

	if i == len(t.PieceHashes)-1 {
		return t.Length - t.PieceLength*int64(len(t.PieceHashes)-1)
	}

	return t.PieceLength
}

// BEP0012: announce-list is a list of tiers, each a list of tracker urls
func parseAnnounceList(top bencode.Dict) ([]string, error) {
	raw, ok := top["announce-list"]
	if !ok {
		return nil, nil
	}

	tiers, ok := raw.(bencode.List)
	if !ok {
		return nil, &SchemaError{Field: "announce-list", Reason: "not a list"}
	}

	var urls []string
	for _, tier := range tiers {
		list, ok := tier.(bencode.List)
		if !ok {
			return nil, &SchemaError{Field: "announce-list", Reason: "tier is not a list"}
		}

		for _, u := range list {
			s, ok := u.(bencode.String)
			if !ok || !utf8.Valid(s) {
				return nil, &SchemaError{Field: "announce-list", Reason: "tracker url is not text"}
			}
			urls = append(urls, string(s))
		}
	}

	return urls, nil
}

func textField(d bencode.Dict, key, field string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", &SchemaError{Field: field, Reason: "missing"}
	}

	s, ok := v.(bencode.String)
	if !ok {
		return "", &SchemaError{Field: field, Reason: "not a byte string"}
	}

	if !utf8.Valid(s) {
		return "", &SchemaError{Field: field, Reason: "not valid UTF-8 text"}
	}

	return string(s), nil
}

func intField(d bencode.Dict, key, field string) (int64, error) {
	v, ok := d[key]
	if !ok {
		return 0, &SchemaError{Field: field, Reason: "missing"}
	}

	n, ok := v.(bencode.Int)
	if !ok {
		return 0, &SchemaError{Field: field, Reason: "not an integer"}
	}

	return int64(n), nil
}

package torrentparser

import (
	"fmt"

	"github.com/givxl33t/bittorrent-announce-go/bencode"
)

// appendInfo validates the info dictionary and copies its fields into t.
// The info hash is computed over the dictionary itself, so it has to be the
// exact subtree that was decoded from the file.
func (t *TorrentFile) appendInfo(info bencode.Dict) error {
	if _, hasFiles := info["files"]; hasFiles {
		if _, hasLength := info["length"]; !hasLength {
			return &SchemaError{Field: "info.length", Reason: "multi-file torrents are not supported"}
		}
	}

	name, err := textField(info, "name", "info.name")
	if err != nil {
		return err
	}

	length, err := intField(info, "length", "info.length")
	if err != nil {
		return err
	}
	if length < 0 {
		return &SchemaError{Field: "info.length", Reason: "negative"}
	}

	pieceLength, err := intField(info, "piece length", "info.piece length")
	if err != nil {
		return err
	}
	if pieceLength <= 0 {
		return &SchemaError{Field: "info.piece length", Reason: "not positive"}
	}

	rawPieces, ok := info["pieces"]
	if !ok {
		return &SchemaError{Field: "info.pieces", Reason: "missing"}
	}
	pieces, ok := rawPieces.(bencode.String)
	if !ok {
		return &SchemaError{Field: "info.pieces", Reason: "not a byte string"}
	}

	// split the Pieces blob into the 20-byte SHA-1 hashes for comparison later
	if len(pieces)%hashLen != 0 {
		return &SchemaError{
			Field:  "info.pieces",
			Reason: fmt.Sprintf("length %d is not a multiple of %d", len(pieces), hashLen),
		}
	}

	numPieces := int64(len(pieces) / hashLen)
	want := length / pieceLength
	if length%pieceLength != 0 {
		want++
	}
	if numPieces != want {
		return &SchemaError{
			Field:  "info.pieces",
			Reason: fmt.Sprintf("has %d piece hashes, length and piece length require %d", numPieces, want),
		}
	}

	t.PieceHashes = make([][hashLen]byte, numPieces)
	for i := range t.PieceHashes {
		copy(t.PieceHashes[i][:], pieces[i*hashLen:(i+1)*hashLen])
	}

	infoHash, err := HashInfo(info)
	if err != nil {
		return err
	}

	t.Name = name
	t.Length = length
	t.PieceLength = pieceLength
	t.Pieces = []byte(pieces)
	t.InfoHash = infoHash
	t.Info = info

	return nil
}

package torrentparser

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/givxl33t/bittorrent-announce-go/bencode"
)

const testAnnounce = "http://bittorrent-test-tracker.codecrafters.io/announce"

var testPieces = bytes.Repeat([]byte{0xe8, 0x76, 0xf6, 0x7a, 0x00, 0x2b, 0x8a, 0xfe, 0x3d, 0x94}, 6)

func sampleInfo() bencode.Dict {
	return bencode.Dict{
		"name":         bencode.String("sample.txt"),
		"length":       bencode.Int(92063),
		"piece length": bencode.Int(32768),
		"pieces":       bencode.String(testPieces),
	}
}

func encodeTorrent(t *testing.T, top bencode.Dict) []byte {
	t.Helper()
	data, err := bencode.Encode(top)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return data
}

func sampleTorrent(t *testing.T) []byte {
	return encodeTorrent(t, bencode.Dict{
		"announce": bencode.String(testAnnounce),
		"info":     sampleInfo(),
	})
}

func TestParse(t *testing.T) {
	tf, err := Parse(sampleTorrent(t))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if tf.Announce != testAnnounce {
		t.Errorf("Announce = %q, want %q", tf.Announce, testAnnounce)
	}
	if tf.Name != "sample.txt" {
		t.Errorf("Name = %q, want sample.txt", tf.Name)
	}
	if tf.Length != 92063 {
		t.Errorf("Length = %d, want 92063", tf.Length)
	}
	if tf.PieceLength != 32768 {
		t.Errorf("PieceLength = %d, want 32768", tf.PieceLength)
	}
	if !bytes.Equal(tf.Pieces, testPieces) {
		t.Errorf("Pieces = %x, want %x", tf.Pieces, testPieces)
	}
	if len(tf.PieceHashes) != 3 {
		t.Fatalf("got %d piece hashes, want 3", len(tf.PieceHashes))
	}
	for i, h := range tf.PieceHashes {
		if !bytes.Equal(h[:], testPieces[i*20:(i+1)*20]) {
			t.Errorf("piece hash %d = %x", i, h)
		}
	}
	if len(tf.AnnounceList) != 0 {
		t.Errorf("AnnounceList = %v, want empty", tf.AnnounceList)
	}
}

func TestParseInfoHash(t *testing.T) {
	canonical := append([]byte("d6:lengthi92063e4:name10:sample.txt12:piece lengthi32768e6:pieces60:"), testPieces...)
	canonical = append(canonical, 'e')
	expected := InfoHash(sha1.Sum(canonical))

	tf, err := Parse(sampleTorrent(t))
	if err != nil {
		t.Fatal(err)
	}

	if tf.InfoHash != expected {
		t.Fatalf("InfoHash = %s, want %s", tf.InfoHash, expected)
	}
	if len(tf.InfoHash.Hex()) != 40 {
		t.Fatalf("Hex() returned %q", tf.InfoHash.Hex())
	}
}

func TestParseInfoHashMatchesAnacrolix(t *testing.T) {
	data := sampleTorrent(t)

	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("metainfo.Load returned error: %v", err)
	}

	tf, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	if want := mi.HashInfoBytes().HexString(); tf.InfoHash.Hex() != want {
		t.Fatalf("InfoHash = %s, anacrolix computed %s", tf.InfoHash.Hex(), want)
	}
}

func TestParseInfoHashIgnoresKeyOrder(t *testing.T) {
	announce := "d8:announce" + "31:http://tracker.example/announce"

	sorted := []byte(announce + "4:infod6:lengthi92063e4:name10:sample.txt12:piece lengthi32768e6:pieces60:")
	sorted = append(sorted, testPieces...)
	sorted = append(sorted, "ee"...)

	shuffled := []byte(announce + "4:infod6:pieces60:")
	shuffled = append(shuffled, testPieces...)
	shuffled = append(shuffled, "12:piece lengthi32768e4:name10:sample.txt6:lengthi92063eee"...)

	first, err := Parse(sorted)
	if err != nil {
		t.Fatalf("Parse(sorted) returned error: %v", err)
	}

	second, err := Parse(shuffled)
	if err != nil {
		t.Fatalf("Parse(shuffled) returned error: %v", err)
	}

	if first.InfoHash != second.InfoHash {
		t.Fatalf("info hash depends on key order: %s != %s", first.InfoHash, second.InfoHash)
	}
}

func TestParseSchemaErrors(t *testing.T) {
	withInfo := func(edit func(bencode.Dict)) bencode.Dict {
		info := sampleInfo()
		edit(info)
		return bencode.Dict{"announce": bencode.String(testAnnounce), "info": info}
	}

	var tests = []struct {
		name  string
		top   bencode.Value
		field string
	}{
		{"not a dict", bencode.List{}, ""},
		{"missing announce", bencode.Dict{"info": sampleInfo()}, "announce"},
		{"announce not text", bencode.Dict{"announce": bencode.String{0xff, 0xfe}, "info": sampleInfo()}, "announce"},
		{"announce wrong kind", bencode.Dict{"announce": bencode.Int(1), "info": sampleInfo()}, "announce"},
		{"missing info", bencode.Dict{"announce": bencode.String(testAnnounce)}, "info"},
		{"info wrong kind", bencode.Dict{"announce": bencode.String(testAnnounce), "info": bencode.String("x")}, "info"},
		{"missing name", withInfo(func(d bencode.Dict) { delete(d, "name") }), "info.name"},
		{"missing length", withInfo(func(d bencode.Dict) { delete(d, "length") }), "info.length"},
		{"length wrong kind", withInfo(func(d bencode.Dict) { d["length"] = bencode.String("1") }), "info.length"},
		{"negative length", withInfo(func(d bencode.Dict) { d["length"] = bencode.Int(-1) }), "info.length"},
		{"missing piece length", withInfo(func(d bencode.Dict) { delete(d, "piece length") }), "info.piece length"},
		{"zero piece length", withInfo(func(d bencode.Dict) { d["piece length"] = bencode.Int(0) }), "info.piece length"},
		{"missing pieces", withInfo(func(d bencode.Dict) { delete(d, "pieces") }), "info.pieces"},
		{"pieces wrong kind", withInfo(func(d bencode.Dict) { d["pieces"] = bencode.List{} }), "info.pieces"},
		{"pieces not multiple of 20", withInfo(func(d bencode.Dict) { d["pieces"] = bencode.String(testPieces[:59]) }), "info.pieces"},
		// three hashes, but 100000 bytes in 32768 byte pieces needs four
		{"piece count law", withInfo(func(d bencode.Dict) { d["length"] = bencode.Int(100000) }), "info.pieces"},
		{"multi-file", withInfo(func(d bencode.Dict) {
			delete(d, "length")
			d["files"] = bencode.List{bencode.Dict{"length": bencode.Int(1), "path": bencode.List{bencode.String("a")}}}
		}), "info.length"},
		{"bad announce-list", bencode.Dict{
			"announce":      bencode.String(testAnnounce),
			"announce-list": bencode.List{bencode.String("http://a")},
			"info":          sampleInfo(),
		}, "announce-list"},
	}

	for _, test := range tests {
		data, err := bencode.Encode(test.top)
		if err != nil {
			t.Fatalf("%s: failed to encode fixture: %v", test.name, err)
		}

		_, err = Parse(data)

		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("%s: Parse returned %v, expected *SchemaError", test.name, err)
		}

		if schemaErr.Field != test.field {
			t.Fatalf("%s: SchemaError field = %q, want %q", test.name, schemaErr.Field, test.field)
		}
	}
}

func TestParseMalformedBencode(t *testing.T) {
	_, err := Parse([]byte("d8:announce5:hi"))

	var parseErr *bencode.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse returned %v, expected *bencode.ParseError", err)
	}
}

func TestParseAnnounceList(t *testing.T) {
	data := encodeTorrent(t, bencode.Dict{
		"announce": bencode.String(testAnnounce),
		"announce-list": bencode.List{
			bencode.List{bencode.String("http://a.example/announce")},
			bencode.List{bencode.String("http://b.example/announce"), bencode.String("udp://c.example:80")},
		},
		"info": sampleInfo(),
	})

	tf, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"http://a.example/announce", "http://b.example/announce", "udp://c.example:80"}
	if len(tf.AnnounceList) != len(expected) {
		t.Fatalf("AnnounceList = %v, want %v", tf.AnnounceList, expected)
	}
	for i := range expected {
		if tf.AnnounceList[i] != expected[i] {
			t.Fatalf("AnnounceList = %v, want %v", tf.AnnounceList, expected)
		}
	}
}

func TestPieceSize(t *testing.T) {
	tf, err := Parse(sampleTorrent(t))
	if err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		index    int
		expected int64
	}{
		{0, 32768},
		{1, 32768},
		{2, 92063 - 2*32768},
		{3, 0},
		{-1, 0},
	}

	for _, test := range tests {
		if actual := tf.PieceSize(test.index); actual != test.expected {
			t.Errorf("PieceSize(%d) = %d, want %d", test.index, actual, test.expected)
		}
	}
}

func TestParseEmptyTorrent(t *testing.T) {
	tf, err := Parse(encodeTorrent(t, bencode.Dict{
		"announce": bencode.String(testAnnounce),
		"info": bencode.Dict{
			"name":         bencode.String("empty"),
			"length":       bencode.Int(0),
			"piece length": bencode.Int(16384),
			"pieces":       bencode.String(""),
		},
	}))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(tf.PieceHashes) != 0 {
		t.Fatalf("got %d piece hashes for an empty torrent", len(tf.PieceHashes))
	}
}

func TestParseTorrentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.torrent")
	if err := os.WriteFile(path, sampleTorrent(t), 0o644); err != nil {
		t.Fatal(err)
	}

	tf, err := ParseTorrentFile(path)
	if err != nil {
		t.Fatalf("ParseTorrentFile returned error: %v", err)
	}
	if tf.Name != "sample.txt" {
		t.Fatalf("Name = %q", tf.Name)
	}

	_, err = ParseTorrentFile(filepath.Join(t.TempDir(), "missing.torrent"))

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("ParseTorrentFile returned %v, expected *IOError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("IOError does not unwrap to fs.ErrNotExist: %v", err)
	}
}

package torrentparser

import (
	"os"
)

// parses a raw torrent file
func ParseTorrentFile(path string) (*TorrentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	return Parse(data)
}

package bittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/givxl33t/bittorrent-announce-go/bencode"
	"github.com/givxl33t/bittorrent-announce-go/config"
	"github.com/givxl33t/bittorrent-announce-go/torrentparser"
	"github.com/givxl33t/bittorrent-announce-go/tracker"

	"go.uber.org/zap"
)

// App runs the CLI commands. Output meant for the user is written to Stdout,
// diagnostics go through Logger.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Tracker *tracker.Client
	Stdout  io.Writer
}

// Decode prints the bencoded input as a single line of JSON.
func (a *App) Decode(input string) error {
	v, err := bencode.Decode([]byte(input))
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	enc := json.NewEncoder(a.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(bencode.Display(v))
}

// Info prints the torrent metadata, then announces to its tracker and prints
// the raw tracker response.
func (a *App) Info(ctx context.Context, path string) error {
	torrent, err := torrentparser.ParseTorrentFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse torrent file: %w", err)
	}

	a.Logger.Debug("Parsed torrent",
		zap.String("name", torrent.Name),
		zap.Int("pieces", len(torrent.PieceHashes)),
		zap.Strings("announceList", torrent.AnnounceList),
	)

	fmt.Fprintf(a.Stdout, "Tracker URL: %s\n", torrent.Announce)
	fmt.Fprintf(a.Stdout, "Length: %d\n", torrent.Length)
	fmt.Fprintf(a.Stdout, "Info Hash: %s\n", torrent.InfoHash.Hex())
	fmt.Fprintf(a.Stdout, "Piece Length: %d\n", torrent.PieceLength)
	fmt.Fprintln(a.Stdout, "Piece Hashes:")
	for _, hash := range torrent.PieceHashes {
		fmt.Fprintf(a.Stdout, "%x\n", hash)
	}

	ctx, cancel := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancel()

	raw, err := a.Tracker.Announce(ctx, torrent.Announce, tracker.AnnounceParams{
		InfoHash: torrent.InfoHash,
		PeerID:   a.Config.PeerID,
		Port:     a.Config.Port,
		Left:     uint64(torrent.Length),
		Compact:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to announce: %w", err)
	}

	a.logTrackerResponse(raw)

	if _, err := a.Stdout.Write(raw); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.Stdout)
	return err
}

// diagnostics only, the response is printed raw
func (a *App) logTrackerResponse(raw []byte) {
	resp, err := tracker.ParseResponse(raw)
	if err != nil {
		a.Logger.Warn("Unable to decode tracker response", zap.Error(err))
		return
	}

	if resp.FailureReason != "" {
		a.Logger.Warn("Tracker reported a failure", zap.String("reason", resp.FailureReason))
		return
	}

	a.Logger.Debug("Tracker response",
		zap.Int("interval", resp.Interval),
		zap.Int("peers", len(resp.Peers)),
	)
}

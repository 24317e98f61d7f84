package bittorrent

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/givxl33t/bittorrent-announce-go/bencode"
	"github.com/givxl33t/bittorrent-announce-go/config"
	"github.com/givxl33t/bittorrent-announce-go/torrentparser"
	"github.com/givxl33t/bittorrent-announce-go/tracker"

	"go.uber.org/zap"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const usage = `usage: bittorrent [flags] <command> <argument>

commands:
  decode <bencoded-text>   print the decoded value as JSON
  info <torrent-file>      print torrent metadata and announce to its tracker
`

// Run parses args, executes one command and returns the process exit code.
// It is the only place where errors are turned into messages.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cfg, rest, err := config.Parse("bittorrent", args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(stderr, usage)
			return ExitOK
		}
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	logger := config.NewLogger(cfg.LogLevel, stderr)
	defer logger.Sync()

	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return ExitUsage
	}

	command := rest[0]
	switch command {
	case "decode", "info":
	default:
		fmt.Fprintf(stdout, "unknown command: %s\n", command)
		return ExitError
	}

	if len(rest) != 2 {
		fmt.Fprint(stderr, usage)
		return ExitUsage
	}

	app := &App{
		Config:  cfg,
		Logger:  logger.With(zap.String("command", command)),
		Tracker: tracker.NewClient(logger),
		Stdout:  stdout,
	}

	if command == "decode" {
		err = app.Decode(rest[1])
	} else {
		err = app.Info(ctx, rest[1])
	}

	if err != nil {
		app.Logger.Debug("Command failed", zap.Error(err))
		fmt.Fprintf(stderr, "%s: %v\n", errorKind(err), err)
		return ExitError
	}

	return ExitOK
}

func errorKind(err error) string {
	var (
		ioErr     *torrentparser.IOError
		parseErr  *bencode.ParseError
		schemaErr *torrentparser.SchemaError
		netErr    *tracker.NetworkError
		encErr    *bencode.EncodingError
	)

	switch {
	case errors.As(err, &ioErr):
		return "io error"
	case errors.As(err, &parseErr):
		return "parse error"
	case errors.As(err, &schemaErr):
		return "schema error"
	case errors.As(err, &netErr):
		return "network error"
	case errors.As(err, &encErr):
		return "encoding error"
	default:
		return "error"
	}
}

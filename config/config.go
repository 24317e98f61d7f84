package config

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultPort    = 6881
	DefaultTimeout = 15 * time.Second

	// prefix of generated peer ids, Azureus-style client tag
	peerIDPrefix = "-GT0001-"

	envPeerID = "GOTORRENT_PEER_ID"
	envPort   = "GOTORRENT_PORT"
)

// Config holds the client identity and the tracker call limits.
type Config struct {
	PeerID   [20]byte
	Port     uint16
	Timeout  time.Duration
	LogLevel zapcore.Level
}

// Parse reads flags from args, falling back to environment variables looked
// up through getenv. It returns the configuration and the remaining
// positional arguments.
func Parse(name string, args []string, getenv func(string) string, output io.Writer) (*Config, []string, error) {
	cfg := &Config{LogLevel: zapcore.WarnLevel}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	defaultPort := uint(DefaultPort)
	var envPortErr error
	if env := getenv(envPort); env != "" {
		p, err := strconv.ParseUint(env, 10, 16)
		if err != nil {
			envPortErr = fmt.Errorf("invalid %s %q: %w", envPort, env, err)
		} else {
			defaultPort = uint(p)
		}
	}

	peerID := fs.String("peer-id", getenv(envPeerID), "20 byte peer id, random when empty")
	port := fs.Uint("port", defaultPort, "port reported to the tracker")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "timeout for the tracker request")
	fs.Var(&cfg.LogLevel, "log-level", "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// a bad environment port only matters when -port did not replace it
	if envPortErr != nil && !isSet(fs, "port") {
		return nil, nil, envPortErr
	}

	if *port > 65535 {
		return nil, nil, fmt.Errorf("invalid port %d", *port)
	}
	cfg.Port = uint16(*port)

	if cfg.Timeout <= 0 {
		return nil, nil, errors.New("timeout must be positive")
	}

	if *peerID == "" {
		id, err := GeneratePeerID()
		if err != nil {
			return nil, nil, err
		}
		cfg.PeerID = id
	} else {
		if len(*peerID) != len(cfg.PeerID) {
			return nil, nil, fmt.Errorf("peer id must be %d bytes, got %d", len(cfg.PeerID), len(*peerID))
		}
		copy(cfg.PeerID[:], *peerID)
	}

	return cfg, fs.Args(), nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// GeneratePeerID returns the client prefix followed by random bytes.
func GeneratePeerID() ([20]byte, error) {
	var id [20]byte
	copy(id[:], peerIDPrefix)
	if _, err := rand.Read(id[len(peerIDPrefix):]); err != nil {
		return id, fmt.Errorf("generating peer id: %w", err)
	}
	return id, nil
}

// NewLogger builds a console logger writing to w. Command output goes to
// stdout, so w is normally stderr.
func NewLogger(level zapcore.Level, w io.Writer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(w), level)
	return zap.New(core)
}

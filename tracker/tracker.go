package tracker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MaxResponseSize caps how much of a tracker response body is read.
const MaxResponseSize = 1 << 20

// Event is the optional announce event, BEP0003.
type Event string

const (
	EventNone      Event = ""
	EventStarted   Event = "started"
	EventCompleted Event = "completed"
	EventStopped   Event = "stopped"
)

// AnnounceParams holds the values sent to the tracker for one announce.
type AnnounceParams struct {
	InfoHash   [20]byte
	PeerID     [20]byte
	Port       uint16
	Uploaded   uint64
	Downloaded uint64
	Left       uint64
	Compact    bool
	Event      Event
}

// Client announces to HTTP trackers.
type Client struct {
	HTTP   *http.Client
	Logger *zap.Logger
}

// NewClient returns a Client using http.DefaultClient.
func NewClient(logger *zap.Logger) *Client {
	return &Client{HTTP: http.DefaultClient, Logger: logger}
}

// Announce sends a GET to the tracker and returns the raw response body.
// The body is not interpreted; ParseResponse can decode it.
//
// Cancellation and timeouts are taken from ctx.
func (c *Client) Announce(ctx context.Context, announce string, p AnnounceParams) ([]byte, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	trackerURL, err := BuildURL(announce, p)
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("tracker", announce), zap.Binary("infoHash", p.InfoHash[:]))
	logger.Debug("Announcing to tracker", zap.String("url", trackerURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackerURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: announce, Err: fmt.Errorf("failed to create http request: %w", err)}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Error("Tracker request failed", zap.Error(err))
		return nil, &NetworkError{URL: announce, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("Tracker responded with an error status", zap.Int("status", resp.StatusCode))
		return nil, &NetworkError{URL: announce, StatusCode: resp.StatusCode}
	}

	// read one byte past the limit to detect oversized bodies
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		logger.Error("Unable to read tracker response", zap.Error(err))
		return nil, &NetworkError{URL: announce, Err: fmt.Errorf("failed to read http response: %w", err)}
	}

	if len(raw) > MaxResponseSize {
		return nil, &NetworkError{URL: announce, Err: fmt.Errorf("response exceeds %d bytes", MaxResponseSize)}
	}

	logger.Debug("Received tracker response", zap.Int("bytes", len(raw)))
	return raw, nil
}

// BuildURL appends the announce query to the tracker url. Only http and
// https trackers are supported.
func BuildURL(announce string, p AnnounceParams) (string, error) {
	u, err := url.Parse(announce)
	if err != nil {
		return "", &NetworkError{URL: announce, Err: fmt.Errorf("failed to parse tracker url: %w", err)}
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return "", &NetworkError{URL: announce, Err: fmt.Errorf("unsupported tracker protocol: %q", u.Scheme)}
	}

	query := BuildQuery(p)
	if u.RawQuery != "" {
		query = u.RawQuery + "&" + query
	}
	u.RawQuery = query

	// fragments are never sent to the server
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// BuildQuery renders the announce parameters in a fixed order. The info hash
// and peer id are escaped byte by byte and never treated as text.
func BuildQuery(p AnnounceParams) string {
	compact := "0"
	if p.Compact {
		compact = "1"
	}

	var b strings.Builder
	b.WriteString("info_hash=")
	b.WriteString(EscapeBytes(p.InfoHash[:]))
	b.WriteString("&peer_id=")
	b.WriteString(EscapeBytes(p.PeerID[:]))
	b.WriteString("&port=")
	b.WriteString(strconv.FormatUint(uint64(p.Port), 10))
	b.WriteString("&uploaded=")
	b.WriteString(strconv.FormatUint(p.Uploaded, 10))
	b.WriteString("&downloaded=")
	b.WriteString(strconv.FormatUint(p.Downloaded, 10))
	b.WriteString("&left=")
	b.WriteString(strconv.FormatUint(p.Left, 10))
	b.WriteString("&compact=")
	b.WriteString(compact)

	if p.Event != EventNone {
		b.WriteString("&event=")
		b.WriteString(EscapeBytes([]byte(p.Event)))
	}

	return b.String()
}

const upperhex = "0123456789ABCDEF"

// EscapeBytes percent-encodes every byte outside the RFC 3986 unreserved set.
// Unlike url.QueryEscape it never turns a space into '+'.
func EscapeBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)

	for _, c := range b {
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&0x0f])
	}

	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

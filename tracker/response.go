package tracker

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/zeebo/bencode"
)

// Response is the decoded body of an HTTP tracker announce.
type Response struct {
	FailureReason string
	Interval      int
	Peers         []net.TCPAddr
}

type httpTrackerResponse struct {
	FailureReason string `bencode:"failure reason"`
	Interval      int    `bencode:"interval"`
	// either a compact string or a list of dictionaries
	Peers bencode.RawMessage `bencode:"peers"`
}

// a single entry of a non-compact peer list
type httpTrackerPeer struct {
	ID   string `bencode:"peer id"`
	IP   string `bencode:"ip"`
	Port int    `bencode:"port"`
}

// ParseResponse decodes a tracker response body as returned by
// Client.Announce. A tracker-side failure is reported through
// Response.FailureReason, not as an error.
func ParseResponse(raw []byte) (*Response, error) {
	var r httpTrackerResponse
	if err := bencode.DecodeBytes(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshalling http response: %w", err)
	}

	resp := &Response{
		FailureReason: r.FailureReason,
		Interval:      r.Interval,
	}

	if len(r.Peers) == 0 {
		return resp, nil
	}

	var err error
	switch c := r.Peers[0]; {
	case c >= '0' && c <= '9':
		resp.Peers, err = parseCompactPeers(r.Peers)
	case c == 'l':
		resp.Peers, err = parseDictPeers(r.Peers)
	default:
		err = errors.New("invalid peers value")
	}
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func parseCompactPeers(raw bencode.RawMessage) ([]net.TCPAddr, error) {
	var peers string
	if err := bencode.DecodeBytes(raw, &peers); err != nil {
		return nil, fmt.Errorf("unmarshalling compact peers: %w", err)
	}

	const peerSize = 6 // 4 bytes for IP, 2 for port
	if len(peers)%peerSize != 0 {
		return nil, fmt.Errorf("invalid compact peers length %d", len(peers))
	}

	addrs := make([]net.TCPAddr, 0, len(peers)/peerSize)
	for i := 0; i < len(peers); i += peerSize {
		addrs = append(addrs, net.TCPAddr{
			IP:   net.IPv4(peers[i], peers[i+1], peers[i+2], peers[i+3]),
			Port: int(binary.BigEndian.Uint16([]byte(peers[i+4 : i+6]))),
		})
	}

	return addrs, nil
}

func parseDictPeers(raw bencode.RawMessage) ([]net.TCPAddr, error) {
	var peers []httpTrackerPeer
	if err := bencode.DecodeBytes(raw, &peers); err != nil {
		return nil, fmt.Errorf("unmarshalling peer list: %w", err)
	}

	addrs := make([]net.TCPAddr, 0, len(peers))
	for _, peer := range peers {
		ip := net.ParseIP(peer.IP)
		if ip == nil {
			return nil, fmt.Errorf("invalid peer ip %q", peer.IP)
		}
		addrs = append(addrs, net.TCPAddr{IP: ip, Port: peer.Port})
	}

	return addrs, nil
}

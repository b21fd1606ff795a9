// Package transport provides the TCP byte stream telnet sessions run over.
package transport

import (
	"context"
	"net"
	"time"

	"github.com/pires/go-proxyproto"
	"github.com/pkg/errors"
)

// Config tunes the dialed connection. The zero value dials plain TCP with
// the operating system keepalive defaults.
type Config struct {
	// KeepAliveIdle enables TCP keepalive tuning when non-zero.
	KeepAliveIdle     time.Duration
	KeepAliveInterval time.Duration
	KeepAliveCount    int

	// ProxyProtocol writes a PROXY header (version 1 or 2) right after
	// connecting, for devices reached through a proxy-protocol aware relay.
	ProxyProtocol byte
}

// Conn is a dialed TCP connection.
type Conn struct {
	net.Conn
}

// CloseWrite shuts down the sending side of the connection.
func (c *Conn) CloseWrite() error {
	if tc, ok := c.Conn.(*net.TCPConn); ok {
		return errors.Wrap(tc.CloseWrite(), "close write")
	}
	return c.Conn.Close()
}

// Dial connects to address. ctx bounds the dial only.
func Dial(ctx context.Context, address string, cfg Config) (*Conn, error) {
	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", address)
	}

	if cfg.KeepAliveIdle > 0 {
		interval := cfg.KeepAliveInterval
		if interval <= 0 {
			interval = cfg.KeepAliveIdle
		}
		count := cfg.KeepAliveCount
		if count <= 0 {
			count = 3
		}
		if err := SetTCPKeepalive(raw, cfg.KeepAliveIdle, interval, count); err != nil {
			_ = raw.Close()
			return nil, errors.Wrap(err, "set keepalive")
		}
	}

	if cfg.ProxyProtocol != 0 {
		if err := writeProxyHeader(raw, cfg.ProxyProtocol); err != nil {
			_ = raw.Close()
			return nil, err
		}
	}
	return &Conn{Conn: raw}, nil
}

func writeProxyHeader(conn net.Conn, version byte) error {
	if version != 1 && version != 2 {
		return errors.Errorf("unsupported proxy protocol version %d", version)
	}
	header := proxyproto.HeaderProxyFromAddrs(version, conn.LocalAddr(), conn.RemoteAddr())
	if _, err := header.WriteTo(conn); err != nil {
		return errors.Wrap(err, "write proxy header")
	}
	return nil
}

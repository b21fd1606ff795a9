package transport

import (
	"net"
	"time"
)

// SetTCPKeepalive enables keepalive probing on conn.
// idle: time before first probe
// interval: time between probes
// count: probes before the peer is considered dead
func SetTCPKeepalive(conn net.Conn, idle, interval time.Duration, count int) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tcpConn.SetKeepAlive(true); err != nil {
		return err
	}
	if err := tcpConn.SetKeepAlivePeriod(interval); err != nil {
		return err
	}
	return setKeepaliveOptions(tcpConn, idle, interval, count)
}

//go:build !linux && !darwin

package transport

import (
	"net"
	"time"
)

func setKeepaliveOptions(conn *net.TCPConn, idle, interval time.Duration, count int) error {
	return nil
}

//go:build darwin

package transport

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

func setKeepaliveOptions(conn *net.TCPConn, idle, interval time.Duration, count int) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var sysErr error
	err = rawConn.Control(func(fd uintptr) {
		sysErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPALIVE, int(idle.Seconds()))
		if sysErr != nil {
			return
		}
		// not available on older releases
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(interval.Seconds()))
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, count)
	})
	if err != nil {
		return err
	}
	return sysErr
}

//go:build linux

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
		opts := []struct{ name, value int }{
			{unix.TCP_KEEPIDLE, int(idle.Seconds())},
			{unix.TCP_KEEPINTVL, int(interval.Seconds())},
			{unix.TCP_KEEPCNT, count},
			// unacked data gives up after the same budget as the probes, in ms
			{unix.TCP_USER_TIMEOUT, int(idle.Milliseconds()) + int(interval.Milliseconds())*count},
		}
		for _, o := range opts {
			if sysErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, o.name, o.value); sysErr != nil {
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return sysErr
}

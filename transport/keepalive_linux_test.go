//go:build linux

package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSetTCPKeepalive_SocketOptions(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, SetTCPKeepalive(conn, 30*time.Second, 10*time.Second, 3))

	raw, err := conn.(*net.TCPConn).SyscallConn()
	require.NoError(t, err)
	got := map[string]int{}
	require.NoError(t, raw.Control(func(fd uintptr) {
		for name, opt := range map[string]int{
			"idle":     unix.TCP_KEEPIDLE,
			"interval": unix.TCP_KEEPINTVL,
			"count":    unix.TCP_KEEPCNT,
			"user":     unix.TCP_USER_TIMEOUT,
		} {
			v, err := unix.GetsockoptInt(int(fd), unix.IPPROTO_TCP, opt)
			require.NoError(t, err)
			got[name] = v
		}
	}))
	require.Equal(t, map[string]int{"idle": 30, "interval": 10, "count": 3, "user": 60000}, got)
}

func TestSetTCPKeepalive_IgnoresNonTCP(t *testing.T) {
	a, b := net.Pipe()
	defer func() { _ = a.Close(); _ = b.Close() }()
	require.NoError(t, SetTCPKeepalive(a, time.Second, time.Second, 1))
}

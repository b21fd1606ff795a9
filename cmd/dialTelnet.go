package cmd

import (
	"context"
	"fmt"
	"time"

	"telnet-exfil/telnet"
	"telnet-exfil/transport"
)

// dialTelnet opens a persistent shell with opts. connTimeout bounds connect,
// login and the wait for the first prompt together.
func dialTelnet(opts telnet.Options, connTimeout time.Duration) (session, error) {
	ctx := context.Background()
	if connTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connTimeout)
		defer cancel()
	}
	if cfgProxyProtocol != 0 && cfgProxyProtocol != 1 && cfgProxyProtocol != 2 {
		return nil, fmt.Errorf("--proxy-protocol must be 1 or 2, got %d", cfgProxyProtocol)
	}
	dialer := telnet.TCPDialer(transport.Config{
		KeepAliveIdle: 30 * time.Second,
		ProxyProtocol: byte(cfgProxyProtocol),
	})
	ps, err := newPersistentShell(ctx, opts, telnet.WithDialer(dialer), telnet.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return ps, nil
}

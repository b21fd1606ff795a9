package cmd

import (
	"fmt"
	"os"
	"time"

	"telnet-exfil/telnet"
)

// sessionClient owns the session to one device and replaces it when a
// command times out, so later commands run on a fresh shell.
type sessionClient struct {
	target string
	opts   telnet.Options
	sess   session
}

// connectClient dials target with the manifest device defaults and flags.
func connectClient(d device, target string) (*sessionClient, error) {
	opts, err := deviceOptions(d, target)
	if err != nil {
		return nil, err
	}
	c := &sessionClient{target: target, opts: opts}
	if c.sess, err = dialTelnetFunc(opts, cfgConnTimeout); err != nil {
		return nil, fmt.Errorf("telnet connection to %s failed: %w", target, err)
	}
	return c, nil
}

func (c *sessionClient) prompt() string { return c.sess.Prompt() }

// run executes one manifest command with its overrides and timeout.
func (c *sessionClient) run(e commandEntry, timeout time.Duration) (string, int, error) {
	opts, err := e.execOptions()
	if err != nil {
		return "", -1, err
	}
	return runRemoteCommandFunc(c.sess, e.line(), timeout, opts...)
}

// reconnect drops the current session and dials again.
func (c *sessionClient) reconnect() error {
	_, _ = fmt.Fprintf(os.Stderr, "Command timed out; reconnecting to %s...\n", c.target)
	_ = c.sess.Close()
	sess, err := dialTelnetFunc(c.opts, cfgConnTimeout)
	if err != nil {
		return fmt.Errorf("reconnect to %s failed after timeout: %w", c.target, err)
	}
	c.sess = sess
	return nil
}

func (c *sessionClient) Close() error { return c.sess.Close() }

package cmd

import (
	"context"
	"errors"
	"fmt"

	"telnet-exfil/telnet"
)

// persistentShell keeps one telnet session open for a whole manifest run so
// that every command executes in the same logged-in shell, including the
// enable level reached during login.
type persistentShell struct {
	sess   *telnet.Session
	prompt string
	unsub  func()
}

// newPersistentShell connects, logs in and waits for the first shell prompt.
// ctx bounds the whole sequence.
func newPersistentShell(ctx context.Context, opts telnet.Options, options ...telnet.Option) (*persistentShell, error) {
	sess, err := telnet.New(opts, options...)
	if err != nil {
		return nil, err
	}
	ps := &persistentShell{sess: sess}
	ps.unsub = sess.Subscribe(func(ev telnet.Event) {
		logger.Debug("session event", "session", sess.ID(), "event", ev.Kind.String(), "err", ev.Err)
	}, telnet.EventTimeout, telnet.EventEnd, telnet.EventError, telnet.EventLoginFailed)

	if err := sess.Connect(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	prompt, err := sess.WaitReady(ctx)
	if err != nil {
		_ = ps.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("no shell prompt from %s:%d: %w", opts.Host, opts.Port, err)
		}
		return nil, err
	}
	ps.prompt = prompt
	return ps, nil
}

// Prompt is the shell prompt text detected after login.
func (ps *persistentShell) Prompt() string { return ps.prompt }

// Exec runs line in the shared shell. When the device drops the connection
// while the command is outstanding, Exec fails with telnet.ErrClosed rather
// than waiting for ctx.
func (ps *persistentShell) Exec(ctx context.Context, line string, opts ...telnet.ExecOption) (string, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		select {
		case <-ps.sess.Done():
			cancel(telnet.ErrClosed)
		case <-ctx.Done():
		}
	}()

	out, err := ps.sess.Exec(ctx, line, opts...)
	if err != nil && errors.Is(context.Cause(ctx), telnet.ErrClosed) {
		return out, telnet.ErrClosed
	}
	return out, err
}

// Close ends the session and waits until its event loop has stopped. It is
// safe to call multiple times.
func (ps *persistentShell) Close() error {
	if ps.unsub != nil {
		ps.unsub()
	}
	err := ps.sess.Close()
	<-ps.sess.Done()
	return err
}

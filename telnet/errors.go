package telnet

import (
	"errors"
	"fmt"
)

var (
	// ErrNotWritable is returned by Exec when the transport cannot take writes.
	ErrNotWritable = errors.New("socket not writable")
	// ErrExecInProgress is returned by Exec while another command is outstanding.
	ErrExecInProgress = errors.New("exec already in progress")
	// ErrLoginFailed is reported when the remote rejects the credentials.
	ErrLoginFailed = errors.New("login failed")
	// ErrTimeout marks connect and idle timeouts.
	ErrTimeout = errors.New("timeout")
	// ErrClosed is returned when the session has been closed.
	ErrClosed = errors.New("session closed")
)

// TransportError wraps a failure raised by the underlying transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telnet %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// transportError normalizes a transport failure. Plain text causes become
// error values.
func transportError(op string, cause any) *TransportError {
	switch c := cause.(type) {
	case *TransportError:
		return c
	case error:
		return &TransportError{Op: op, Err: c}
	case string:
		return &TransportError{Op: op, Err: errors.New(c)}
	default:
		return &TransportError{Op: op, Err: fmt.Errorf("%v", c)}
	}
}

package cmd

import (
	"context"
	"errors"
	"time"

	"telnet-exfil/telnet"
)

// runRemoteCommand executes line on s and returns the cleaned output with an
// exit code. Telnet carries no exit status, so the code is 0 when the shell
// prompt came back and -1 otherwise.
func runRemoteCommand(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := s.Exec(ctx, line, opts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Caller may reconnect.
			return "", -1, context.DeadlineExceeded
		}
		return out, -1, err
	}
	return out, 0, nil
}

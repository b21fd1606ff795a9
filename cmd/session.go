package cmd

import (
	"context"

	"telnet-exfil/telnet"
)

// session is a logged-in device shell that runs one command line at a time
type session interface {
	Exec(ctx context.Context, line string, opts ...telnet.ExecOption) (string, error)
	Prompt() string
	Close() error
}

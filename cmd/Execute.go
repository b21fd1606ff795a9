package cmd

import (
	"errors"
	"fmt"
	"os"

	"telnet-exfil/telnet"
)

// Execute runs the root command. Any failure exits with code 1; rejected
// credentials are reported on stdout so wrappers can tell them apart from
// connection problems.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var terr *telnet.TransportError
	switch {
	case errors.Is(err, telnet.ErrLoginFailed):
		_, _ = fmt.Fprintln(os.Stdout, err)
	case errors.As(err, &terr) && terr.Op == "connect":
		_, _ = fmt.Fprintf(os.Stderr, "%v (check --target and --conn-timeout)\n", err)
	default:
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	exitFunc(1)
}

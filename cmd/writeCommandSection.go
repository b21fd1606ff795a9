package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

var sectionRule = strings.Repeat("-", 80)

// writeCommandSection writes one command's results to the text report. The
// title, when present, shares the section rule with the command.
func writeCommandSection(w io.Writer, c commandEntry, out string, exitCode int, runErr error, timeout time.Duration) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintln(bw, sectionRule)
	if title := strings.TrimSpace(c.Title); title != "" {
		_, _ = fmt.Fprintf(bw, "Title: %s\n", title)
	}
	_, _ = fmt.Fprintf(bw, "Command: %s\n", c.line())
	if timeout > 0 {
		_, _ = fmt.Fprintf(bw, "Timeout: %s\n", timeout)
	}
	_, _ = fmt.Fprintf(bw, "Exit Code: %d\n", exitCode)
	if runErr != nil {
		_, _ = fmt.Fprintf(bw, "Error: %v\n", runErr)
	}
	_, _ = fmt.Fprintln(bw, "Output:")
	_, _ = fmt.Fprintln(bw, "---8<---")
	_, _ = bw.WriteString(out)
	if !strings.HasSuffix(out, "\n") {
		_ = bw.WriteByte('\n')
	}
	_, _ = fmt.Fprintln(bw, "---8<---")
	return bw.Flush()
}

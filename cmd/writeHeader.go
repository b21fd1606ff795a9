package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// writeHeader starts the text report with the manifest metadata and the
// device it runs against.
func writeHeader(w io.Writer, mf *manifest, target string) {
	fields := [][2]string{
		{"Name", mf.Name},
		{"Description", mf.Description},
		{"Device", target},
		{"Generated", time.Now().Format(time.RFC3339)},
		{"Command Count", fmt.Sprint(len(mf.Commands))},
	}
	bw := bufio.NewWriter(w)
	for _, f := range fields {
		_, _ = fmt.Fprintf(bw, "%s: %s\n", f[0], f[1])
	}
	_, _ = bw.WriteString(strings.Repeat("=", 80) + "\n")
	_ = bw.Flush()
}

package cmd

import "strings"

// line renders the command with its arguments quoted for a POSIX shell.
// Device CLIs that do not understand quotes should put everything in
// command and leave args empty.
func (c *commandEntry) line() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Command)
	for _, a := range c.Args {
		parts = append(parts, shellQuote(a))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

package cmd

import (
	"fmt"
	"time"

	"telnet-exfil/telnet"
)

type commandEntry struct {
	// "command" is preferred; "cmd" also accepted during unmarshal
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	// Optional display title for the section heading
	Title string `yaml:"title,omitempty"`
	// Optional per-command timeout like "30s"; overrides global if set
	Timeout string `yaml:"timeout,omitempty"`

	// Per-command session overrides. They apply to this command only.
	ShellPrompt         string `yaml:"shell_prompt,omitempty"`
	PageSeparator       string `yaml:"page_separator,omitempty"`
	IRS                 string `yaml:"irs,omitempty"`
	ORS                 string `yaml:"ors,omitempty"`
	EchoLines           *int   `yaml:"echo_lines,omitempty"`
	IgnoreOutput        bool   `yaml:"ignore_output,omitempty"`
	IgnoreOutputTimeout string `yaml:"ignore_output_timeout,omitempty"`
}

// execOptions turns the per-command overrides into session exec options.
func (c *commandEntry) execOptions() ([]telnet.ExecOption, error) {
	var opts []telnet.ExecOption
	if c.ShellPrompt != "" {
		m, err := telnet.ParseMatcher(c.ShellPrompt)
		if err != nil {
			return nil, fmt.Errorf("shell_prompt: %w", err)
		}
		opts = append(opts, telnet.ExecShellPrompt(m))
	}
	if c.PageSeparator != "" {
		m, err := telnet.ParseMatcher(c.PageSeparator)
		if err != nil {
			return nil, fmt.Errorf("page_separator: %w", err)
		}
		opts = append(opts, telnet.ExecPageSeparator(m))
	}
	if c.IRS != "" {
		opts = append(opts, telnet.ExecIRS(c.IRS))
	}
	if c.ORS != "" {
		opts = append(opts, telnet.ExecORS(c.ORS))
	}
	if c.EchoLines != nil {
		if *c.EchoLines < 0 {
			return nil, fmt.Errorf("echo_lines must be >= 0, got %d", *c.EchoLines)
		}
		opts = append(opts, telnet.ExecEchoLines(*c.EchoLines))
	}
	if c.IgnoreOutput {
		var d time.Duration
		if c.IgnoreOutputTimeout != "" {
			var err error
			if d, err = time.ParseDuration(c.IgnoreOutputTimeout); err != nil {
				return nil, fmt.Errorf("ignore_output_timeout: %w", err)
			}
		}
		opts = append(opts, telnet.ExecIgnoreOutput(d))
	}
	return opts, nil
}

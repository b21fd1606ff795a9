package telnet

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Options configures a Session. Start from DefaultOptions and override the
// fields that differ; a zero EchoLines is meaningful and is not replaced.
type Options struct {
	Host string
	Port int

	// Timeout bounds the connect. IdleTimeout fires EventTimeout when no
	// data arrives for that long; zero reuses Timeout, negative disables it.
	Timeout     time.Duration
	IdleTimeout time.Duration

	ShellPrompt       Matcher
	LoginPrompt       Matcher
	PasswordPrompt    Matcher
	FailedLoginPrompt Matcher
	EnablePrompt      Matcher

	Username       string
	Password       string
	Enable         bool
	EnablePassword string

	IRS           string
	ORS           string
	EchoLines     int
	PageSeparator Matcher

	IgnoreOutput        bool
	IgnoreOutputTimeout time.Duration

	// EvaluateBanner matches prompts in the first chunk after connect.
	// By default that chunk only moves the session out of Start.
	EvaluateBanner bool
}

// FailedLoginPatterns matches the usual rejection messages. Assign it to
// Options.FailedLoginPrompt to get EventLoginFailed; DefaultOptions leaves
// failed-login detection off.
var FailedLoginPatterns = MustPattern(`(?i)(login incorrect|authentication failed|access denied)`)

// DefaultOptions returns the stock configuration for a busybox style shell.
func DefaultOptions() Options {
	return Options{
		Host:                "127.0.0.1",
		Port:                23,
		Timeout:             500 * time.Millisecond,
		ShellPrompt:         MustPattern(`(?:/ )?#\s`),
		LoginPrompt:         MustPattern(`(?i)login[: ]*$`),
		PasswordPrompt:      MustPattern(`(?i)Password: `),
		EnablePrompt:        MustPattern(`(?i)Password: `),
		Username:            "root",
		Password:            "guest",
		EnablePassword:      "enablepass",
		IRS:                 "\r\n",
		ORS:                 "\n",
		EchoLines:           1,
		PageSeparator:       Literal("---- More"),
		IgnoreOutputTimeout: time.Second,
	}
}

func (o Options) validate() error {
	if strings.TrimSpace(o.Host) == "" {
		return errors.New("telnet: host is required")
	}
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("telnet: invalid port %d", o.Port)
	}
	if o.EchoLines < 0 {
		return fmt.Errorf("telnet: echo lines must be >= 0, got %d", o.EchoLines)
	}
	if o.IRS == "" || o.ORS == "" {
		return errors.New("telnet: record separators must not be empty")
	}
	if o.ShellPrompt == nil {
		return errors.New("telnet: shell prompt is required")
	}
	return nil
}

func (o Options) idleTimeout() time.Duration {
	if o.IdleTimeout == 0 {
		return o.Timeout
	}
	return o.IdleTimeout
}

// Option customizes the collaborators of a Session.
type Option func(*Session)

// WithDialer replaces the transport dialer.
func WithDialer(d Dialer) Option {
	return func(s *Session) { s.dialer = d }
}

// WithLogger routes session diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDSource replaces the session id allocator.
func WithIDSource(ids IDSource) Option {
	return func(s *Session) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// call is one Exec in flight. Overrides never leak into the session
// defaults.
type call struct {
	Command
	timeout time.Duration
	result  chan string
}

func newCall(opts Options, line string, overrides ...ExecOption) *call {
	c := &call{
		Command: Command{
			Line:                line,
			IRS:                 opts.IRS,
			ORS:                 opts.ORS,
			EchoLines:           opts.EchoLines,
			PageSeparator:       opts.PageSeparator,
			IgnoreOutput:        opts.IgnoreOutput,
			IgnoreOutputTimeout: opts.IgnoreOutputTimeout,
		},
		result: make(chan string, 1),
	}
	for _, o := range overrides {
		o(c)
	}
	return c
}

// ExecOption overrides a session default for a single Exec.
type ExecOption func(*call)

// ExecShellPrompt sets the prompt that terminates this command's output.
func ExecShellPrompt(m Matcher) ExecOption {
	return func(c *call) {
		if m != nil {
			c.Prompt = m
		}
	}
}

// ExecTimeout bounds how long Exec waits for the response.
func ExecTimeout(d time.Duration) ExecOption {
	return func(c *call) { c.timeout = d }
}

func ExecIRS(irs string) ExecOption {
	return func(c *call) {
		if irs != "" {
			c.IRS = irs
		}
	}
}

func ExecORS(ors string) ExecOption {
	return func(c *call) {
		if ors != "" {
			c.ORS = ors
		}
	}
}

// ExecEchoLines sets how many leading lines are treated as echo.
func ExecEchoLines(n int) ExecOption {
	return func(c *call) {
		if n >= 0 {
			c.EchoLines = n
		}
	}
}

func ExecPageSeparator(m Matcher) ExecOption {
	return func(c *call) {
		if m != nil {
			c.PageSeparator = m
		}
	}
}

// ExecIgnoreOutput discards the response and resolves with "" after d.
// A non-positive d keeps the session's IgnoreOutputTimeout.
func ExecIgnoreOutput(d time.Duration) ExecOption {
	return func(c *call) {
		c.IgnoreOutput = true
		if d > 0 {
			c.IgnoreOutputTimeout = d
		}
	}
}

package telnet

import (
	"strings"
	"time"
)

// Effect is an action requested by the Machine. The driver performs effects
// in order.
type Effect interface{ effect() }

// Write sends Data to the remote. When Ack is set the driver must call
// Machine.Ack once the write has completed.
type Write struct {
	Data []byte
	Ack  bool
}

// Emit publishes Event to subscribers.
type Emit struct{ Event Event }

// Deliver resolves the outstanding command with Lines.
type Deliver struct{ Lines []string }

// Wait asks the driver to call Machine.Expire(Seq) after D.
type Wait struct {
	D   time.Duration
	Seq uint64
}

func (Write) effect()   {}
func (Emit) effect()    {}
func (Deliver) effect() {}
func (Wait) effect()    {}

// Command is the resolved form of one Exec.
type Command struct {
	Line                string
	Prompt              Matcher
	IRS                 string
	ORS                 string
	EchoLines           int
	PageSeparator       Matcher
	IgnoreOutput        bool
	IgnoreOutputTimeout time.Duration
}

// Machine is the session state machine. It performs no I/O: every input
// returns the effects the caller has to carry out, so the transitions can be
// driven from a single goroutine or directly from tests.
type Machine struct {
	opts   Options
	state  State
	armed  State
	prompt Matcher
	buf    strings.Builder

	cur      Command
	seq      uint64
	sending  bool
	ignoring bool
}

// NewMachine returns a Machine for a freshly connected transport.
func NewMachine(opts Options) *Machine {
	return &Machine{opts: opts, state: Start, prompt: opts.ShellPrompt}
}

func (m *Machine) State() State { return m.state }

// Prompt returns the matcher that currently terminates responses. After the
// first shell prompt it is the literal text that prompt matched.
func (m *Machine) Prompt() Matcher { return m.prompt }

// Buffered returns the response text accumulated so far.
func (m *Machine) Buffered() string { return m.buf.String() }

// Feed processes one inbound chunk.
func (m *Machine) Feed(chunk []byte) []Effect {
	var effects []Effect
	if reply, payload, ok := Negotiate(chunk); ok {
		effects = append(effects, Write{Data: reply})
		if len(payload) == 0 {
			return effects
		}
		chunk = payload
	}
	if m.ignoring {
		return effects
	}
	if m.state == Start {
		m.state = GetPrompt
		if !m.opts.EvaluateBanner {
			return effects
		}
	}

	text := string(chunk)
	switch m.state {
	case GetPrompt:
		effects = append(effects, m.getPrompt(text)...)
	case Enable:
		if matches(m.opts.EnablePrompt, text) {
			effects = append(effects, m.login(m.opts.EnablePassword, GetPrompt))
		}
	case GetEnablePrompt:
		if matches(m.prompt, text) {
			effects = append(effects, m.login("en", Enable))
		}
	case Response:
		effects = append(effects, m.response(text)...)
	}
	return effects
}

func (m *Machine) getPrompt(text string) []Effect {
	if loc := find(m.prompt, text); loc != nil {
		anchor := text[loc[0]:loc[1]]
		if anchor != "" {
			m.prompt = Literal(anchor)
		}
		m.buf.Reset()
		m.state = Idle
		return []Effect{Emit{Event{Kind: EventReady, Prompt: anchor}}}
	}
	if matches(m.opts.FailedLoginPrompt, text) {
		return []Effect{Emit{Event{Kind: EventLoginFailed, Err: ErrLoginFailed}}}
	}
	if matches(m.opts.LoginPrompt, text) {
		return []Effect{m.login(m.opts.Username, GetPrompt)}
	}
	if matches(m.opts.PasswordPrompt, text) {
		next := GetPrompt
		if m.opts.Enable {
			next = GetEnablePrompt
		}
		return []Effect{m.login(m.opts.Password, next)}
	}
	return nil
}

// login sends a credential line. The session stays in Login until the write
// is acknowledged and then moves to next.
func (m *Machine) login(secret string, next State) Effect {
	m.state = Login
	m.armed = next
	return Write{Data: []byte(secret + m.opts.ORS), Ack: true}
}

// response handles a chunk in the Response state. The prompt is searched in
// the current chunk only, and before the page separator, so a chunk holding
// both ends the response.
func (m *Machine) response(text string) []Effect {
	m.buf.WriteString(text)
	if find(m.responsePrompt(), text) == nil {
		if matches(m.cur.PageSeparator, text) {
			return []Effect{Write{Data: []byte{' '}}}
		}
		return nil
	}

	lines := strings.Split(m.buf.String(), m.cur.IRS)
	kept := lines[:0]
	for _, l := range lines {
		if !matches(m.cur.PageSeparator, l) {
			kept = append(kept, l)
		}
	}
	if m.cur.EchoLines >= len(kept) {
		kept = nil
	} else {
		kept = kept[m.cur.EchoLines:]
	}
	if len(kept) > 0 {
		kept = kept[:len(kept)-1]
	}

	m.buf.Reset()
	m.state = Idle
	return []Effect{Deliver{Lines: kept}}
}

func (m *Machine) responsePrompt() Matcher {
	if m.cur.Prompt != nil {
		return m.cur.Prompt
	}
	return m.prompt
}

// Begin starts cmd. Inbound data is dropped from here on when the command
// ignores its output.
func (m *Machine) Begin(cmd Command) []Effect {
	if cmd.IRS == "" {
		cmd.IRS = m.opts.IRS
	}
	if cmd.ORS == "" {
		cmd.ORS = m.opts.ORS
	}
	if cmd.PageSeparator == nil {
		cmd.PageSeparator = m.opts.PageSeparator
	}
	m.seq++
	m.cur = cmd
	m.sending = true
	m.ignoring = cmd.IgnoreOutput
	return []Effect{Write{Data: []byte(cmd.Line + cmd.ORS), Ack: true}}
}

// Ack completes the write started by the last Write effect with Ack set.
func (m *Machine) Ack() []Effect {
	if m.sending {
		m.sending = false
		m.state = Response
		m.buf.Reset()
		effects := []Effect{Emit{Event{Kind: EventWriteDone}}}
		if m.cur.IgnoreOutput {
			effects = append(effects, Wait{D: m.cur.IgnoreOutputTimeout, Seq: m.seq})
		}
		return effects
	}
	if m.state == Login {
		m.state = m.armed
	}
	return nil
}

// Expire ends the ignore window of command seq and resolves it empty.
// Stale sequence numbers are ignored.
func (m *Machine) Expire(seq uint64) []Effect {
	if seq != m.seq || !m.ignoring {
		return nil
	}
	m.ignoring = false
	m.buf.Reset()
	m.state = Idle
	return []Effect{Deliver{}}
}

// Abandon drops the outstanding command. Output that still arrives for it is
// ignored.
func (m *Machine) Abandon() {
	m.seq++
	m.sending = false
	m.ignoring = false
	m.buf.Reset()
	if m.state == Response {
		m.state = Idle
	}
}

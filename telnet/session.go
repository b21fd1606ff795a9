package telnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"telnet-exfil/transport"
)

const readBufferSize = 4096

// Transport is the byte stream a Session runs over. Transports that also
// implement CloseWrite support half-close through Session.End.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to address ("host:port").
type Dialer interface {
	Dial(ctx context.Context, address string) (Transport, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, address string) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context, address string) (Transport, error) {
	return f(ctx, address)
}

// TCPDialer dials plain TCP through the transport package.
func TCPDialer(cfg transport.Config) Dialer {
	return DialerFunc(func(ctx context.Context, address string) (Transport, error) {
		conn, err := transport.Dial(ctx, address, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}

// Session drives one interactive shell over one Transport.
//
// All protocol state is owned by a single goroutine that consumes inbound
// chunks, Exec requests and timer expiries from one queue, so chunks are
// handled strictly one after another. Event handlers run on that goroutine
// and must not block or call back into the Session synchronously.
type Session struct {
	opts   Options
	dialer Dialer
	log    *slog.Logger
	ids    IDSource
	id     string
	events hub

	mu        sync.Mutex
	conn      Transport
	connected bool
	running   bool

	writable atomic.Bool
	busy     atomic.Bool

	tasks     chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	readyOnce sync.Once
	ready     chan struct{}
	prompt    string
	failOnce  sync.Once
	failed    chan struct{}

	// owned by the run goroutine
	m       *Machine
	pending *call
	idle    *time.Timer
}

// New validates opts and returns an unconnected Session.
func New(opts Options, options ...Option) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s := &Session{
		opts:   opts,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    UUIDs{},
		tasks:  make(chan func(), 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		ready:  make(chan struct{}),
		failed: make(chan struct{}),
	}
	for _, o := range options {
		o(s)
	}
	if s.dialer == nil {
		s.dialer = TCPDialer(transport.Config{})
	}
	s.id = s.ids.NextID()
	s.log = s.log.With("session", s.id)
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Subscribe registers fn for the given event kinds, or for every kind when
// none are given. The returned function removes the subscription. All
// subscriptions are dropped after EventClose.
func (s *Session) Subscribe(fn func(Event), kinds ...EventKind) (unsubscribe func()) {
	return s.events.subscribe(fn, kinds...)
}

// Writable reports whether Exec can currently write to the transport.
func (s *Session) Writable() bool { return s.writable.Load() }

// Done is closed once the session has shut down. Close does not wait for
// it; after Done no subscriber is called again.
func (s *Session) Done() <-chan struct{} { return s.done }

// Connect dials the remote and starts the session. A dial failure, including
// the connect timeout, is published as EventError and returned; the session
// is closed afterwards.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return errors.New("telnet: already connected")
	}
	s.connected = true
	s.mu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	dctx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	s.log.Debug("connecting", "addr", addr)
	conn, err := s.dialer.Dial(dctx, addr)
	if err != nil {
		if ctx.Err() == nil && errors.Is(dctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("cannot connect to %s: %w", addr, ErrTimeout)
		}
		terr := transportError("connect", err)
		s.log.Debug("connect failed", "err", terr)
		s.events.emit(Event{Kind: EventError, Err: terr})
		_ = s.Close()
		return terr
	}

	s.mu.Lock()
	if s.isClosed() {
		s.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	s.conn = conn
	s.running = true
	s.m = NewMachine(s.opts)
	s.mu.Unlock()

	s.writable.Store(true)
	go s.run()
	go s.read(conn)
	return nil
}

// WaitReady blocks until the shell prompt has been seen and returns its text.
// It fails with ErrLoginFailed when the remote rejects the credentials and
// with ErrClosed when the session ends first.
func (s *Session) WaitReady(ctx context.Context) (string, error) {
	select {
	case <-s.ready:
		return s.prompt, nil
	default:
	}
	select {
	case <-s.ready:
		return s.prompt, nil
	case <-s.failed:
		return "", ErrLoginFailed
	case <-s.quit:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Exec writes command followed by the output record separator and returns
// the response with echo, pager and prompt lines removed.
//
// Exec fails with ErrNotWritable when the transport cannot take writes and
// with ErrExecInProgress while another Exec is outstanding. A command that is
// still outstanding when the session closes is never resolved: ctx is the
// only way to end that wait.
func (s *Session) Exec(ctx context.Context, command string, opts ...ExecOption) (string, error) {
	if !s.writable.Load() {
		return "", ErrNotWritable
	}
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrExecInProgress
	}
	c := newCall(s.opts, command, opts...)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if !s.post(func() { s.begin(c) }) {
		s.busy.Store(false)
		return "", ErrNotWritable
	}

	select {
	case out := <-c.result:
		return out, nil
	case <-ctx.Done():
		s.post(func() { s.abandon(c) })
		s.busy.Store(false)
		return "", ctx.Err()
	}
}

// End half-closes the transport. Transports without CloseWrite are closed.
func (s *Session) End() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotWritable
	}
	s.writable.Store(false)
	if hc, ok := conn.(interface{ CloseWrite() error }); ok {
		return hc.CloseWrite()
	}
	return s.Close()
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writable.Store(false)
		close(s.quit)

		s.mu.Lock()
		conn, running := s.conn, s.running
		s.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
		if !running {
			s.events.emit(Event{Kind: EventClose})
			s.events.reset()
			close(s.done)
		}
	})
	return err
}

func (s *Session) isClosed() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// post queues task for the run goroutine. It reports false once the session
// is closed.
func (s *Session) post(task func()) bool {
	if s.isClosed() {
		return false
	}
	select {
	case s.tasks <- task:
		return true
	case <-s.quit:
		return false
	}
}

func (s *Session) run() {
	defer close(s.done)
	s.events.emit(Event{Kind: EventConnect})

	idle := s.opts.idleTimeout()
	var idleC <-chan time.Time
	if idle > 0 {
		s.idle = time.NewTimer(idle)
		defer s.idle.Stop()
		idleC = s.idle.C
	}

	for {
		select {
		case task := <-s.tasks:
			if s.isClosed() {
				continue
			}
			task()
		case <-idleC:
			s.log.Debug("idle timeout", "after", idle)
			s.events.emit(Event{Kind: EventTimeout, Err: ErrTimeout})
		case <-s.quit:
			s.log.Debug("closed", "state", s.m.State())
			s.events.emit(Event{Kind: EventClose})
			s.events.reset()
			return
		}
	}
}

func (s *Session) read(conn Transport) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if !s.post(func() { s.onData(chunk) }) {
				return
			}
		}
		if err == nil {
			continue
		}
		if s.isClosed() {
			return
		}
		if errors.Is(err, io.EOF) {
			s.post(func() {
				s.events.emit(Event{Kind: EventEnd})
				_ = s.Close()
			})
			return
		}
		terr := transportError("read", err)
		s.post(func() {
			s.events.emit(Event{Kind: EventError, Err: terr})
			_ = s.Close()
		})
		return
	}
}

func (s *Session) onData(chunk []byte) {
	if s.idle != nil {
		s.idle.Reset(s.opts.idleTimeout())
	}
	s.log.Debug("recv", "state", s.m.State(), "bytes", len(chunk))
	s.apply(s.m.Feed(chunk))
}

func (s *Session) apply(effects []Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case Write:
			if err := s.write(e.Data); err != nil {
				return
			}
			if e.Ack {
				s.apply(s.m.Ack())
			}
		case Emit:
			s.publish(e.Event)
		case Deliver:
			s.deliver(e.Lines)
		case Wait:
			seq := e.Seq
			time.AfterFunc(e.D, func() {
				s.post(func() { s.apply(s.m.Expire(seq)) })
			})
		}
	}
}

func (s *Session) write(p []byte) error {
	if !s.writable.Load() {
		s.log.Debug("write skipped, transport not writable", "bytes", len(p))
		return ErrNotWritable
	}
	if _, err := s.conn.Write(p); err != nil {
		if s.isClosed() {
			return ErrClosed
		}
		terr := transportError("write", err)
		s.events.emit(Event{Kind: EventError, Err: terr})
		_ = s.Close()
		return terr
	}
	return nil
}

func (s *Session) publish(ev Event) {
	switch ev.Kind {
	case EventReady:
		s.readyOnce.Do(func() {
			s.prompt = ev.Prompt
			close(s.ready)
		})
		s.log.Debug("ready", "prompt", ev.Prompt)
	case EventLoginFailed:
		s.failOnce.Do(func() { close(s.failed) })
		s.log.Debug("login failed")
	}
	s.events.emit(ev)
}

func (s *Session) begin(c *call) {
	s.pending = c
	s.log.Debug("exec", "command", c.Line, "ignore_output", c.IgnoreOutput)
	s.apply(s.m.Begin(c.Command))
}

func (s *Session) deliver(lines []string) {
	c := s.pending
	if c == nil {
		s.log.Debug("discarding response without caller", "lines", len(lines))
		return
	}
	s.pending = nil
	s.busy.Store(false)
	c.result <- strings.Join(lines, "\n")
}

func (s *Session) abandon(c *call) {
	if s.pending != c {
		return
	}
	s.pending = nil
	s.m.Abandon()
}

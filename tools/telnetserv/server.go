package telnetserv

import (
	"bufio"
	"io"
	"net"
	"strings"

	oi "github.com/reiver/go-oi"
	telnet "github.com/reiver/go-telnet"
)

// Config shapes the emulated device. The zero value is a busybox style shell
// with no login.
type Config struct {
	Banner string
	Prompt string

	// User enables a login/password exchange before the prompt.
	User     string
	Password string

	// EnablePassword makes "en" ask for a password before succeeding.
	EnablePassword string

	// PageSeparator is written between pages of the "page" command.
	PageSeparator string
}

func (c Config) withDefaults() Config {
	if c.Banner == "" {
		c.Banner = "telnetserv ready\r\n"
	}
	if c.Prompt == "" {
		c.Prompt = "/ # "
	}
	if c.PageSeparator == "" {
		c.PageSeparator = "---- More"
	}
	return c
}

// Start launches a test telnet device on listenAddr (e.g. 127.0.0.1:0) and
// returns the bound address and a stop function. Every command line is
// echoed and answered with "ok" followed by the prompt, with a few
// exceptions:
//
//	page   two pages of output separated by the pager marker; the second
//	       page is sent once the client answers the marker with a space
//	exit   closes the connection
//	en     enable escalation when EnablePassword is set
func Start(listenAddr string, cfg Config) (string, func(), error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return "", nil, err
	}

	srv := &telnet.Server{Handler: device{cfg: cfg.withDefaults()}}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ln)
	}()

	stop := func() {
		_ = ln.Close()
		<-done
	}
	return ln.Addr().String(), stop, nil
}

type device struct {
	cfg Config
}

func (d device) ServeTELNET(ctx telnet.Context, w telnet.Writer, r telnet.Reader) {
	// the telnet reader fills the whole buffer before returning
	br := bufio.NewReader(byteReader{r})
	say := func(s string) bool {
		_, err := oi.LongWriteString(w, s)
		return err == nil
	}

	if !say(d.cfg.Banner) {
		return
	}
	if d.cfg.User != "" && !d.login(br, say) {
		return
	}
	if !say(d.cfg.Prompt) {
		return
	}

	for {
		line, err := readLine(br)
		if err != nil {
			return
		}
		var reply string
		switch line {
		case "exit":
			return
		case "page":
			if !say(line + "\r\npage1 line1\r\npage1 line2\r\n" + d.cfg.PageSeparator) {
				return
			}
			if b, err := br.ReadByte(); err != nil || b != ' ' {
				return
			}
			reply = "\r\npage2 line1\r\n"
		case "en":
			reply = line + "\r\n"
			if d.cfg.EnablePassword != "" {
				if !say(reply + "Password: ") {
					return
				}
				pw, err := readLine(br)
				if err != nil {
					return
				}
				if pw != d.cfg.EnablePassword {
					reply = "\r\n% Access denied\r\n"
				} else {
					reply = "\r\n"
				}
			}
		default:
			reply = line + "\r\nok\r\n"
		}
		if !say(reply + d.cfg.Prompt) {
			return
		}
	}
}

func (d device) login(br *bufio.Reader, say func(string) bool) bool {
	for {
		if !say("login: ") {
			return false
		}
		user, err := readLine(br)
		if err != nil {
			return false
		}
		if !say("Password: ") {
			return false
		}
		pw, err := readLine(br)
		if err != nil {
			return false
		}
		if user == d.cfg.User && pw == d.cfg.Password {
			return say("\r\n")
		}
		if !say("\r\nLogin incorrect\r\n") {
			return false
		}
	}
}

func readLine(br *bufio.Reader) (string, error) {
	s, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// byteReader hands the telnet reader one byte at a time so reads return as
// soon as data is available.
type byteReader struct{ r io.Reader }

func (b byteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return b.r.Read(p[:1])
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	srv "telnet-exfil/tools/telnetserv"
)

func main() {
	var cfg srv.Config
	addr := flag.String("listen", "127.0.0.1:20023", "listen address")
	flag.StringVar(&cfg.User, "user", "", "require this login user")
	flag.StringVar(&cfg.Password, "password", "", "password for -user")
	flag.StringVar(&cfg.EnablePassword, "enable-password", "", "password for the en command")
	flag.StringVar(&cfg.Prompt, "prompt", "", "shell prompt (default \"/ # \")")
	flag.Parse()

	bound, stop, err := srv.Start(*addr, cfg)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "failed to start test telnet server:", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintln(os.Stderr, "test telnet server listening on", bound)
	defer stop()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}

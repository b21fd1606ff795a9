package cmd

import (
	"io"
	"log/slog"
	"time"
)

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	// Global configuration populated by flags and/or environment variables.
	// Shared by every subcommand.
	cfgManifest       string
	cfgTarget         string
	cfgUser           string
	cfgPassword       string
	cfgEnable         bool
	cfgEnablePassword string
	cfgOutPath        string
	cfgHostsFile      string
	cfgTimeout        time.Duration
	cfgConnTimeout    time.Duration
	cfgIdleTimeout    time.Duration
	cfgProxyProtocol  int
	cfgSkipBanner     bool
	cfgNoop           bool
	cfgDebug          bool
)

// logger receives session diagnostics; --debug points it at stderr.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Allow tests to stub dialing and command execution
var (
	dialTelnetFunc       = dialTelnet
	runRemoteCommandFunc = runRemoteCommand
)

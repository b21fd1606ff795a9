package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"telnet-exfil/telnet"
)

// writeTemp creates a temp file with content and returns its path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// resetConfig clears global configuration so tests don't leak state
func resetConfig() {
	viper.Reset()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), rootCmd.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	cfgManifest = ""
	cfgTarget = ""
	cfgUser = ""
	cfgPassword = ""
	cfgEnable = false
	cfgEnablePassword = ""
	cfgOutPath = ""
	cfgHostsFile = ""
	cfgTimeout = 0
	cfgConnTimeout = 15 * time.Second
	cfgIdleTimeout = 0
	cfgProxyProtocol = 0
	cfgSkipBanner = false
	cfgNoop = false
	cfgDebug = false
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSession stands in for a logged-in device shell.
type fakeSession struct {
	prompt string
	closed int
}

func (f *fakeSession) Exec(ctx context.Context, line string, opts ...telnet.ExecOption) (string, error) {
	return "ok", nil
}
func (f *fakeSession) Prompt() string { return f.prompt }
func (f *fakeSession) Close() error   { f.closed++; return nil }

var _ session = (*fakeSession)(nil)
var _ session = (*persistentShell)(nil)

// stubTelnet swaps the dial and run hooks for the duration of the test.
func stubTelnet(t *testing.T,
	dial func(opts telnet.Options, connTimeout time.Duration) (session, error),
	run func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error),
) {
	t.Helper()
	origDial := dialTelnetFunc
	origRun := runRemoteCommandFunc
	t.Cleanup(func() { dialTelnetFunc = origDial; runRemoteCommandFunc = origRun })
	if dial != nil {
		dialTelnetFunc = dial
	}
	if run != nil {
		runRemoteCommandFunc = run
	}
}

func fakeDial(sessions *[]*fakeSession) func(telnet.Options, time.Duration) (session, error) {
	return func(telnet.Options, time.Duration) (session, error) {
		s := &fakeSession{prompt: "/ # "}
		*sessions = append(*sessions, s)
		return s, nil
	}
}

func TestRootExecute_Success(t *testing.T) {
	resetConfig()
	var sessions []*fakeSession
	call := 0
	stubTelnet(t, fakeDial(&sessions), func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
		call++
		switch call {
		case 1:
			return "out1\n", 0, nil
		case 2:
			return "out2", -1, fmt.Errorf("session closed")
		default:
			return "unexpected", 0, nil
		}
	})

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "manifests/m.yaml", `
name: Test Run
description: Run two commands
commands:
  - title: Greeting
    command: echo
    args: ["hello world", "a'b"]
  - command: show version
`)
	outPath := filepath.Join(tmp, "reports/out.txt")

	rootCmd.SetArgs([]string{
		"--target", "127.0.0.1:2323",
		"--manifest", manifestPath,
		"--out", outPath,
	})
	require.NoError(t, rootCmd.Execute())

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	out := string(b)

	require.Contains(t, out, "Name: Test Run")
	require.Contains(t, out, "Description: Run two commands")
	require.Contains(t, out, "Device: 127.0.0.1:2323")
	require.Contains(t, out, "Title: Greeting\nCommand: echo 'hello world' 'a'\\''b'")
	require.Contains(t, out, "Command: show version\n")
	require.Contains(t, out, "Exit Code: 0")
	require.Contains(t, out, "Exit Code: -1")
	require.Contains(t, out, "Error: session closed")
	require.Contains(t, out, "out2\n---8<---")

	require.Len(t, sessions, 1)
	require.Equal(t, 1, sessions[0].closed)
}

func TestRootExecute_DialsOnceForMultipleCommands(t *testing.T) {
	resetConfig()
	var sessions []*fakeSession
	var lines []string
	stubTelnet(t, fakeDial(&sessions), func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
		require.Same(t, sessions[0], s)
		lines = append(lines, line)
		return "ok\n", 0, nil
	})

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "m.yaml", `
name: N
description: D
commands:
  - command: cmd1
  - cmd: cmd2
`)
	rootCmd.SetArgs([]string{
		"--target", "10.0.0.1",
		"--manifest", manifestPath,
		"--out", filepath.Join(tmp, "out.txt"),
	})
	require.NoError(t, rootCmd.Execute())
	require.Len(t, sessions, 1)
	require.Equal(t, []string{"cmd1", "cmd2"}, lines)
}

func TestRootExecute_TimeoutReconnect(t *testing.T) {
	resetConfig()
	var sessions []*fakeSession
	call := 0
	stubTelnet(t, fakeDial(&sessions), func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
		call++
		if call == 1 {
			require.Equal(t, 50*time.Millisecond, timeout)
			return "", -1, context.DeadlineExceeded
		}
		require.Same(t, sessions[1], s)
		return "ok\n", 0, nil
	})

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "m.yaml", `
name: N
description: D
commands:
  - command: slow
    timeout: 50ms
  - command: fast
`)
	outPath := filepath.Join(tmp, "out.txt")
	rootCmd.SetArgs([]string{
		"--target", "127.0.0.1:23",
		"--manifest", manifestPath,
		"--out", outPath,
		"--cmd-timeout", "5s",
	})
	require.NoError(t, rootCmd.Execute())

	// initial dial plus one reconnect after the timeout
	require.Len(t, sessions, 2)
	require.Equal(t, 1, sessions[0].closed)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	s := string(b)
	require.Contains(t, s, "Timeout: 50ms")
	require.Contains(t, s, "Timeout: 5s")
	require.Contains(t, s, "Error: context deadline exceeded")
	require.Contains(t, s, "Exit Code: -1")
}

func TestRootExecute_NoReconnectAfterLastCommand(t *testing.T) {
	resetConfig()
	var sessions []*fakeSession
	stubTelnet(t, fakeDial(&sessions), func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
		return "", -1, context.DeadlineExceeded
	})

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "m.yaml", "name: N\ndescription: D\ncommands:\n  - command: only\n")
	rootCmd.SetArgs([]string{"--target", "h", "--manifest", manifestPath, "--out", filepath.Join(tmp, "out.txt")})
	require.NoError(t, rootCmd.Execute())
	require.Len(t, sessions, 1)
}

func TestRootExecute_OptionsFromManifestAndFlags(t *testing.T) {
	resetConfig()
	var got telnet.Options
	var gotTimeout time.Duration
	stubTelnet(t, func(opts telnet.Options, connTimeout time.Duration) (session, error) {
		got, gotTimeout = opts, connTimeout
		return &fakeSession{}, nil
	}, func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
		return "", 0, nil
	})

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "m.yaml", `
name: N
description: D
device:
  host: 10.0.0.9
  user: ops
  shell_prompt: 're:[>#] $'
  page_separator: "--More--"
  ors: "\r\n"
  echo_lines: 0
commands:
  - command: show clock
`)
	rootCmd.SetArgs([]string{
		"--manifest", manifestPath,
		"--out", filepath.Join(tmp, "out.txt"),
		"--user", "cli",
		"--password", "pw",
		"--enable",
		"--conn-timeout", "3s",
		"--idle-timeout=-1s",
	})
	require.NoError(t, rootCmd.Execute())

	require.Equal(t, "10.0.0.9", got.Host)
	require.Equal(t, 23, got.Port)
	require.Equal(t, "cli", got.Username)
	require.Equal(t, "pw", got.Password)
	require.True(t, got.Enable)
	require.Equal(t, "[>#] $", got.ShellPrompt.String())
	require.Equal(t, telnet.Literal("--More--"), got.PageSeparator)
	require.Equal(t, "\r\n", got.ORS)
	require.Equal(t, 0, got.EchoLines)
	require.Equal(t, 3*time.Second, got.Timeout)
	require.Equal(t, -time.Second, got.IdleTimeout)
	require.True(t, got.EvaluateBanner)
	require.Equal(t, 3*time.Second, gotTimeout)
}

func TestRootExecute_SkipBanner(t *testing.T) {
	resetConfig()
	var got telnet.Options
	stubTelnet(t, func(opts telnet.Options, _ time.Duration) (session, error) {
		got = opts
		return &fakeSession{}, nil
	}, func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
		return "", 0, nil
	})

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "m.yaml", "name: N\ndescription: D\ncommands:\n  - command: x\n")
	rootCmd.SetArgs([]string{"--target", "h:2323", "--manifest", manifestPath, "--out", filepath.Join(tmp, "o.txt"), "--skip-banner"})
	require.NoError(t, rootCmd.Execute())
	require.False(t, got.EvaluateBanner)
	require.Equal(t, 2323, got.Port)
}

func TestRootExecute_PassesCommandOverrides(t *testing.T) {
	resetConfig()
	var sessions []*fakeSession
	counts := map[string]int{}
	stubTelnet(t, fakeDial(&sessions), func(s session, line string, timeout time.Duration, opts ...telnet.ExecOption) (string, int, error) {
		counts[line] = len(opts)
		return "", 0, nil
	})

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "m.yaml", `
name: N
description: D
commands:
  - command: plain
  - command: configure terminal
    shell_prompt: "(config)# "
    echo_lines: 2
  - command: reload
    ignore_output: true
    ignore_output_timeout: 2s
`)
	rootCmd.SetArgs([]string{"--target", "h", "--manifest", manifestPath, "--out", filepath.Join(tmp, "o.txt")})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, map[string]int{"plain": 0, "configure terminal": 2, "reload": 1}, counts)
}

func TestRootExecute_LoginFailed(t *testing.T) {
	resetConfig()
	stubTelnet(t, func(telnet.Options, time.Duration) (session, error) {
		return nil, telnet.ErrLoginFailed
	}, nil)

	tmp := t.TempDir()
	manifestPath := writeTemp(t, tmp, "m.yaml", "name: N\ndescription: D\ncommands:\n  - command: x\n")
	rootCmd.SetArgs([]string{"--target", "h", "--manifest", manifestPath, "--out", filepath.Join(tmp, "o.txt")})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.True(t, errors.Is(err, telnet.ErrLoginFailed))
	require.Contains(t, err.Error(), "telnet connection to h failed")
}

func TestRootExecute_ValidationErrors(t *testing.T) {
	tmp := t.TempDir()
	good := writeTemp(t, tmp, "m.yaml", "name: N\ndescription: D\ncommands:\n  - command: x\n")

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing manifest", []string{"--target", "h", "--out", filepath.Join(tmp, "o.txt")}, "--manifest is required"},
		{"missing out", []string{"--target", "h", "--manifest", good}, "--out is required"},
		{"missing target", []string{"--manifest", good, "--out", filepath.Join(tmp, "o.txt")}, "--target is required"},
		{"missing description", []string{"--target", "h", "--out", filepath.Join(tmp, "o.txt"),
			"--manifest", writeTemp(t, tmp, "nodesc.yaml", "name: N\ncommands:\n  - command: x\n")}, "manifest.description is required"},
		{"no commands", []string{"--target", "h", "--out", filepath.Join(tmp, "o.txt"),
			"--manifest", writeTemp(t, tmp, "empty.yaml", "name: N\ndescription: D\ncommands: []\n")}, "manifest contains no commands"},
		{"bad prompt", []string{"--target", "h", "--out", filepath.Join(tmp, "o.txt"),
			"--manifest", writeTemp(t, tmp, "badre.yaml", "name: N\ndescription: D\ndevice:\n  shell_prompt: 're:(['\ncommands:\n  - command: x\n")}, "device.shell_prompt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetConfig()
			rootCmd.SetArgs(tc.args)
			err := rootCmd.Execute()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

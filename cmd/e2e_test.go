package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	srv "telnet-exfil/tools/telnetserv"
)

// startE2EDevice runs a telnetserv device that requires login and enable.
func startE2EDevice(t *testing.T) string {
	t.Helper()
	addr, stop, err := srv.Start("127.0.0.1:0", srv.Config{User: "tester", Password: "pw", EnablePassword: "en"})
	require.NoError(t, err)
	t.Cleanup(stop)
	return addr
}

func e2eArgs(addr string, extra ...string) []string {
	return append([]string{
		"--target", addr,
		"--user", "tester",
		"--password", "pw",
		"--enable",
		"--enable-password", "en",
		"--cmd-timeout", "5s",
		"--conn-timeout", "5s",
	}, extra...)
}

// TestEndToEnd_TextReport runs the root command against a local telnet
// device and checks every section of the text report.
func TestEndToEnd_TextReport(t *testing.T) {
	resetConfig()
	addr := startE2EDevice(t)

	tmp := t.TempDir()
	outPath := filepath.Join(tmp, "out.txt")
	mf := writeTemp(t, tmp, "inspection.yaml", `
name: E2E Test
description: Test commands
commands:
  - title: First
    command: show version
  - title: Paged
    command: page
  - title: Third
    command: show clock
`)
	rootCmd.SetArgs(e2eArgs(addr, "--manifest", mf, "--out", outPath))
	require.NoError(t, rootCmd.Execute())

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	text := string(b)
	require.Contains(t, text, "Name: E2E Test")
	require.Contains(t, text, "Command Count: 3")
	require.Equal(t, 2, strings.Count(text, "\nok\n"), text)
	require.Contains(t, text, "page1 line1\npage1 line2\npage2 line1\n")
	require.Equal(t, 3, strings.Count(text, "Exit Code: 0"), text)
}

// TestEndToEnd_RunReconnectsAfterExit drops the connection with "exit" and
// expects the next command to run on a fresh session.
func TestEndToEnd_RunReconnectsAfterExit(t *testing.T) {
	resetConfig()
	addr := startE2EDevice(t)

	tmp := t.TempDir()
	outPath := filepath.Join(tmp, "out.yaml")
	mf := writeTemp(t, tmp, "m.yaml", `
name: E2E
description: Reconnect
commands:
  - command: uptime
  - command: exit
  - command: uptime
`)
	rootCmd.SetArgs(append([]string{"run"}, e2eArgs(addr, "--manifest", mf, "--out", outPath)...))
	require.NoError(t, rootCmd.Execute())

	rep := readReport(t, outPath)
	require.Len(t, rep.Runs, 1)
	res := rep.Runs[0].Results
	require.Len(t, res, 3)
	require.Equal(t, "/ # ", rep.Runs[0].Prompt)
	require.Equal(t, "ok", res[0].Output)
	require.Equal(t, -1, res[1].ExitCode)
	require.Equal(t, "session closed", res[1].Error)
	require.Equal(t, 0, res[2].ExitCode)
	require.Equal(t, "ok", res[2].Output)
}

func TestEndToEnd_ProbeRejectedLogin(t *testing.T) {
	resetConfig()
	addr := startE2EDevice(t)
	rootCmd.SetArgs([]string{"probe", "--target", addr, "--user", "tester", "--password", "wrong"})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "login failed")
}

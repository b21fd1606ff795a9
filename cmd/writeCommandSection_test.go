package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteCommandSection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCommandSection(&buf, commandEntry{Command: "x"}, "hello\n", 0, nil, 0))
	out := buf.String()
	require.Contains(t, out, "Command: x\n")
	require.Contains(t, out, "Exit Code: 0")
	require.Contains(t, out, "---8<---\nhello\n---8<---")
	require.NotContains(t, out, "Timeout:")
	require.NotContains(t, out, "Title:")

	buf.Reset()
	require.NoError(t, writeCommandSection(&buf, commandEntry{Command: "x"}, "no-nl", -1, errors.New("boom"), 3*time.Second))
	out = buf.String()
	require.Contains(t, out, "Timeout: 3s")
	require.Contains(t, out, "Exit Code: -1")
	require.Contains(t, out, "Error: boom")
	require.Contains(t, out, "no-nl\n---8<---")

	buf.Reset()
	require.NoError(t, writeCommandSection(&buf, commandEntry{Command: "x"}, "", 0, nil, 0))
	require.Contains(t, buf.String(), "---8<---\n\n---8<---")
}

func TestWriteCommandSection_WithTitle_SingleSeparator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCommandSection(&buf, commandEntry{Command: "echo 1", Title: " My Task "}, "ok\n", 0, nil, 0))
	out := buf.String()
	require.Equal(t, 1, strings.Count(out, strings.Repeat("-", 80)))
	require.True(t, strings.HasPrefix(out, strings.Repeat("-", 80)+"\nTitle: My Task\nCommand: echo 1\n"))
}

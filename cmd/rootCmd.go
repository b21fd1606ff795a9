package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"telnet-exfil/telnet"
)

var rootCmd = &cobra.Command{
	Use:   "telnet-exfil",
	Short: "Run device commands over telnet from a YAML manifest and capture output",
	Long: "Connects to a device over telnet, answers the login and enable prompts, executes the commands " +
		"from a YAML manifest in one shell, and writes the responses to a text report.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgManifest == "" {
			return errors.New("--manifest is required (path to YAML)")
		}
		if cfgOutPath == "" {
			return errors.New("--out is required (path to output file)")
		}
		mf, err := loadManifest(cfgManifest)
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}
		target := resolveTarget(mf)
		if target == "" {
			return errors.New("--target is required (host[:port])")
		}
		if len(mf.Commands) == 0 {
			return errors.New("manifest contains no commands")
		}

		outFile, err := createOutput(cfgOutPath)
		if err != nil {
			return err
		}
		defer func() { _ = outFile.Close() }()

		writeHeader(outFile, mf, target)

		client, err := connectClient(mf.Device, target)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		for i, c := range mf.Commands {
			_, _ = fmt.Fprintf(os.Stderr, "Executing [%d/%d] %s\n", i+1, len(mf.Commands), c.line())

			cmdTimeout := c.perCommandTimeout(cfgTimeout)
			out, exitCode, runErr := client.run(c, cmdTimeout)
			if err := writeCommandSection(outFile, c, out, exitCode, runErr, cmdTimeout); err != nil {
				return fmt.Errorf("failed writing output: %w", err)
			}
			if needsReconnect(runErr) && i < len(mf.Commands)-1 {
				if err := client.reconnect(); err != nil {
					return err
				}
			}
		}

		_, _ = fmt.Fprintf(os.Stderr, "Done. Output written to %s\n", cfgOutPath)
		return nil
	},
}

// needsReconnect reports whether the session is unusable after err.
func needsReconnect(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, telnet.ErrClosed)
}

// createOutput creates path and any missing parent directories.
func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// probeCmd logs in to the device and reports the shell prompt it settled on.
// The manifest is optional and only supplies device defaults.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Connect, log in and print the detected shell prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		mf := &manifest{}
		if cfgManifest != "" {
			var err error
			if mf, err = loadManifest(cfgManifest); err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
		}
		target := resolveTarget(mf)
		if target == "" {
			return errors.New("--target is required (host[:port])")
		}
		client, err := connectClient(mf.Device, target)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		_, _ = fmt.Fprintf(os.Stdout, "Connected to %s, prompt %q\n", target, client.prompt())
		return nil
	},
}

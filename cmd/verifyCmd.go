package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// verifyCmd loads the manifest with the same validation a run applies,
// which includes compiling every prompt and pager pattern.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate a manifest YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgManifest == "" {
			return errors.New("--manifest is required (path to YAML)")
		}
		mf, err := loadManifest(cfgManifest)
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}
		if target := resolveTarget(mf); target != "" {
			if _, _, err := splitTarget(target); err != nil {
				return fmt.Errorf("invalid manifest: %w", err)
			}
		}
		_, _ = fmt.Fprintf(os.Stdout, "Manifest OK (%d commands)\n", len(mf.Commands))
		return nil
	},
}

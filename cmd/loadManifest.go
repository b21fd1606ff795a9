package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"telnet-exfil/telnet"
)

// loadManifest reads and validates the YAML manifest: name and description
// are required, every command needs a command string, and every prompt or
// pager pattern in the device block and the commands must compile.
func loadManifest(path string) (*manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mf := &manifest{}
	if err := yamlUnmarshal(b, mf); err != nil {
		return nil, err
	}
	if mf.Name == "" {
		return nil, errors.New("manifest.name is required")
	}
	if mf.Description == "" {
		return nil, errors.New("manifest.description is required")
	}
	opts := telnet.DefaultOptions()
	if err := mf.Device.apply(&opts); err != nil {
		return nil, err
	}
	for i := range mf.Commands {
		c := &mf.Commands[i]
		if strings.TrimSpace(c.Command) == "" {
			return nil, fmt.Errorf("commands[%d].command is required", i)
		}
		if _, err := c.execOptions(); err != nil {
			return nil, fmt.Errorf("commands[%d].%w", i, err)
		}
		if c.Timeout != "" {
			if _, err := parseTimeout(c.Timeout); err != nil {
				return nil, fmt.Errorf("commands[%d].timeout: %w", i, err)
			}
		}
	}
	return mf, nil
}

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlUnmarshal decodes a manifest document. Unknown top-level and device
// keys are rejected so that a misspelt prompt field fails verify instead of
// silently falling back to a default.
func yamlUnmarshal(b []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	err := dec.Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

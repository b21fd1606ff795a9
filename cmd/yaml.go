package cmd

import "gopkg.in/yaml.v3"

// UnmarshalYAML accepts "cmd" as an alias for "command".
func (c *commandEntry) UnmarshalYAML(value *yaml.Node) error {
	type plain commandEntry
	var aux struct {
		plain `yaml:",inline"`
		Cmd   string `yaml:"cmd"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*c = commandEntry(aux.plain)
	if c.Command == "" {
		c.Command = aux.Cmd
	}
	return nil
}

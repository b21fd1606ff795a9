package cmd

import (
	"fmt"
	"time"
)

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", s)
	}
	return d, nil
}

// perCommandTimeout returns the command's own timeout, or defaultTimeout
// when it has none or it does not parse.
func (c *commandEntry) perCommandTimeout(defaultTimeout time.Duration) time.Duration {
	if c.Timeout == "" {
		return defaultTimeout
	}
	d, err := parseTimeout(c.Timeout)
	if err != nil {
		return defaultTimeout
	}
	return d
}

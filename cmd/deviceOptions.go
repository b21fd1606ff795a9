package cmd

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"telnet-exfil/telnet"
)

const defaultTelnetPort = 23

// splitTarget parses host[:port]. A bare host or IPv6 address gets port 23.
func splitTarget(target string) (string, int, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", 0, fmt.Errorf("empty target")
	}
	if !strings.Contains(target, ":") || net.ParseIP(target) != nil {
		return target, defaultTelnetPort, nil
	}
	host, port, err := net.SplitHostPort(target)
	if err != nil {
		return "", 0, fmt.Errorf("invalid target %q: %w", target, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return "", 0, fmt.Errorf("invalid port in target %q", target)
	}
	return host, p, nil
}

// matcherField compiles one prompt field into dst, leaving dst alone when
// the field is empty.
func matcherField(name, value string, dst *telnet.Matcher) error {
	m, err := telnet.ParseMatcher(value)
	if err != nil {
		return fmt.Errorf("device.%s: %w", name, err)
	}
	if m != nil {
		*dst = m
	}
	return nil
}

// apply layers the manifest device defaults onto opts.
func (d device) apply(opts *telnet.Options) error {
	fields := []struct {
		name  string
		value string
		dst   *telnet.Matcher
	}{
		{"shell_prompt", d.ShellPrompt, &opts.ShellPrompt},
		{"login_prompt", d.LoginPrompt, &opts.LoginPrompt},
		{"password_prompt", d.PasswordPrompt, &opts.PasswordPrompt},
		{"failed_login_prompt", d.FailedLoginPrompt, &opts.FailedLoginPrompt},
		{"enable_prompt", d.EnablePrompt, &opts.EnablePrompt},
		{"page_separator", d.PageSeparator, &opts.PageSeparator},
	}
	for _, f := range fields {
		if err := matcherField(f.name, f.value, f.dst); err != nil {
			return err
		}
	}
	if d.User != "" {
		opts.Username = d.User
	}
	if d.Enable {
		opts.Enable = true
	}
	if d.IRS != "" {
		opts.IRS = d.IRS
	}
	if d.ORS != "" {
		opts.ORS = d.ORS
	}
	if d.EchoLines != nil {
		if *d.EchoLines < 0 {
			return fmt.Errorf("device.echo_lines must be >= 0, got %d", *d.EchoLines)
		}
		opts.EchoLines = *d.EchoLines
	}
	return nil
}

// deviceOptions builds session options for target from the defaults, the
// manifest device block and finally the CLI flags.
func deviceOptions(d device, target string) (telnet.Options, error) {
	opts := telnet.DefaultOptions()
	host, port, err := splitTarget(target)
	if err != nil {
		return opts, err
	}
	opts.Host, opts.Port = host, port
	opts.FailedLoginPrompt = telnet.FailedLoginPatterns

	if err := d.apply(&opts); err != nil {
		return opts, err
	}

	if cfgUser != "" {
		opts.Username = cfgUser
	}
	if cfgPassword != "" {
		opts.Password = cfgPassword
	}
	if cfgEnable {
		opts.Enable = true
	}
	if cfgEnablePassword != "" {
		opts.EnablePassword = cfgEnablePassword
	}
	if cfgConnTimeout > 0 {
		opts.Timeout = cfgConnTimeout
	}
	opts.IdleTimeout = cfgIdleTimeout
	opts.EvaluateBanner = !cfgSkipBanner
	return opts, nil
}

// resolveTarget picks the device address: the --target flag, then the
// manifest device host.
func resolveTarget(mf *manifest) string {
	if cfgTarget != "" {
		return cfgTarget
	}
	return strings.TrimSpace(mf.Device.Host)
}

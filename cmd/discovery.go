package cmd

import (
	"bufio"
	"bytes"
	"net"
	"os"
	"strconv"
	"strings"
)

// parseHostsIPs returns the deduplicated, in-order addresses of a hosts(5)
// file. Only the first column of each line is considered and it must parse
// as an IPv4 or IPv6 address.
func parseHostsIPs(b []byte) []string {
	seen := make(map[string]struct{})
	var out []string
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		line := s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ip := fields[0]
		if net.ParseIP(ip) == nil {
			continue
		}
		if _, ok := seen[ip]; ok {
			continue
		}
		seen[ip] = struct{}{}
		out = append(out, ip)
	}
	return out
}

// loadHostsFile reads path and returns its content and the addresses in it.
func loadHostsFile(path string) ([]byte, []string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return b, parseHostsIPs(b), nil
}

// runTargets lists the devices a run visits: primary first (when set),
// then every hosts file address on primary's port. Duplicates are dropped.
func runTargets(primary string, hosts []string) ([]string, error) {
	port := defaultTelnetPort
	var out []string
	seen := map[string]bool{}
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if primary != "" {
		host, p, err := splitTarget(primary)
		if err != nil {
			return nil, err
		}
		port = p
		add(net.JoinHostPort(host, strconv.Itoa(p)))
	}
	for _, h := range hosts {
		add(net.JoinHostPort(h, strconv.Itoa(port)))
	}
	return out, nil
}

package cmd

import (
	"bufio"
	"bytes"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlReport is the top-level structure serialized by the run subcommand:
// metadata, the hosts file the targets came from, and one run per device.
type yamlReport struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Generated   string         `yaml:"generated"`
	Discovery   *yamlDiscovery `yaml:"discovery,omitempty"`
	Runs        []yamlRun      `yaml:"runs,omitempty"`
}

// yamlDiscovery records the --hosts-file input and the addresses taken from it.
type yamlDiscovery struct {
	HostsFile       string   `yaml:"hosts_file,omitempty"`
	HostsContent    string   `yaml:"hosts_content,omitempty"`
	DiscoveredHosts []string `yaml:"discovered_hosts"`
}

// yamlRun groups the results for one device.
type yamlRun struct {
	Host    string          `yaml:"host,omitempty"`
	Prompt  string          `yaml:"prompt,omitempty"`
	Error   string          `yaml:"error,omitempty"`
	Results []yamlCmdResult `yaml:"results"`
}

type yamlCmdResult struct {
	Title    string `yaml:"title,omitempty"`
	Command  string `yaml:"command"`
	Timeout  string `yaml:"timeout,omitempty"`
	ExitCode int    `yaml:"exit_code"`
	Error    string `yaml:"error,omitempty"`
	Output   string `yaml:"output"`
}

func newYAMLReport(mf *manifest) *yamlReport {
	return &yamlReport{
		Name:        mf.Name,
		Description: mf.Description,
		Generated:   time.Now().Format(time.RFC3339),
	}
}

// setDiscovery records the hosts file. The raw content is embedded only when
// includeContent is set.
func (r *yamlReport) setDiscovery(path string, content []byte, hosts []string, includeContent bool) {
	if r.Discovery == nil {
		r.Discovery = &yamlDiscovery{}
	}
	r.Discovery.HostsFile = path
	if includeContent {
		r.Discovery.HostsContent = string(content)
	}
	if hosts == nil {
		hosts = []string{}
	}
	r.Discovery.DiscoveredHosts = hosts
}

// addRun finds or creates the run entry for host.
func (r *yamlReport) addRun(host string) *yamlRun {
	for i := range r.Runs {
		if r.Runs[i].Host == host {
			return &r.Runs[i]
		}
	}
	r.Runs = append(r.Runs, yamlRun{Host: host, Results: []yamlCmdResult{}})
	return &r.Runs[len(r.Runs)-1]
}

func (r *yamlReport) addResult(host string, res yamlCmdResult) {
	run := r.addRun(host)
	run.Results = append(run.Results, res)
}

// writeYAMLReport encodes the report with two-space indentation.
func writeYAMLReport(w io.Writer, r *yamlReport) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

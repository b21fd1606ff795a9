package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// runCmd executes the manifest against one device, or against every address
// of a hosts file, with one persistent telnet shell per device. Results are
// written to a structured YAML report. With --noop, it only writes the
// planned command lines.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute manifest-driven collection run",
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

		report := newYAMLReport(mf)
		var hosts []string
		if cfgHostsFile != "" {
			content, ips, err := loadHostsFile(cfgHostsFile)
			if err != nil {
				return fmt.Errorf("failed to read hosts file: %w", err)
			}
			hosts = ips
			report.setDiscovery(cfgHostsFile, content, ips, len(mf.Commands) > 0)
		}
		targets, err := runTargets(resolveTarget(mf), hosts)
		if err != nil {
			return err
		}
		if len(targets) == 0 && (len(mf.Commands) > 0 || cfgHostsFile == "") {
			return errors.New("--target is required (host[:port]) unless --hosts-file lists devices")
		}

		outFile, err := createOutput(cfgOutPath)
		if err != nil {
			return err
		}
		defer func() { _ = outFile.Close() }()

		// Without commands the report only lists the hosts file addresses.
		if len(mf.Commands) == 0 {
			return finishYAMLReport(outFile, report)
		}

		if cfgNoop {
			const dbgPath = "debug.out"
			if err := writePlan(dbgPath, mf, targets); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stderr, "Noop mode: wrote planned commands to %s\n", dbgPath)
			return finishYAMLReport(outFile, report)
		}

		var (
			connected int
			firstErr  error
		)
		for _, target := range targets {
			if err := runDevice(report, mf, target); err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			connected++
		}
		if err := finishYAMLReport(outFile, report); err != nil {
			return err
		}
		if connected == 0 && firstErr != nil {
			return firstErr
		}
		return nil
	},
}

// runDevice executes every manifest command on target and records the
// results under its run. A connection failure is recorded on the run and
// returned.
func runDevice(report *yamlReport, mf *manifest, target string) error {
	run := report.addRun(target)
	client, err := connectClient(mf.Device, target)
	if err != nil {
		run.Error = err.Error()
		return err
	}
	defer func() { _ = client.Close() }()
	run.Prompt = client.prompt()

	for i, c := range mf.Commands {
		_, _ = fmt.Fprintf(os.Stderr, "Executing %s [%d/%d] %s\n", target, i+1, len(mf.Commands), c.line())

		cmdTimeout := c.perCommandTimeout(cfgTimeout)
		out, exitCode, runErr := client.run(c, cmdTimeout)

		res := yamlCmdResult{
			Title:    strings.TrimSpace(c.Title),
			Command:  c.line(),
			ExitCode: exitCode,
			Output:   out,
		}
		if cmdTimeout > 0 {
			res.Timeout = cmdTimeout.String()
		}
		if runErr != nil {
			res.Error = runErr.Error()
		}
		report.addResult(target, res)

		if needsReconnect(runErr) && i < len(mf.Commands)-1 {
			if err := client.reconnect(); err != nil {
				report.addRun(target).Error = err.Error()
				return err
			}
		}
	}
	return nil
}

// writePlan writes the command lines a run would send, per device.
func writePlan(path string, mf *manifest, targets []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	_, _ = fmt.Fprintf(bw, "# Planned commands (%d commands, %d devices)\n", len(mf.Commands), len(targets))
	for _, target := range targets {
		_, _ = fmt.Fprintf(bw, "# Device: %s\n", target)
		for _, c := range mf.Commands {
			_, _ = fmt.Fprintln(bw, c.line())
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func finishYAMLReport(outFile *os.File, report *yamlReport) error {
	if err := writeYAMLReport(outFile, report); err != nil {
		return fmt.Errorf("failed to write YAML report: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Done. Output written to %s\n", cfgOutPath)
	return nil
}

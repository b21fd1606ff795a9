// Package cmd implements the telnet-exfil command-line interface.
//
// The root command and the run, verify and probe subcommands share one set
// of persistent flags (see init.go). Each device is reached through a
// persistentShell, which wraps a telnet.Session that has already answered
// the login and enable prompts, so every manifest command runs in the same
// shell. The root command writes a text report; run writes a YAML report
// with one entry per device and can take its devices from a hosts file.
//
// Start with rootCmd.go and runCmd.go for the flows, deviceOptions.go for
// how flags and the manifest device block become session options, and
// sessionClient.go for the reconnect-after-timeout behaviour.
package cmd

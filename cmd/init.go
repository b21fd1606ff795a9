package cmd

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TELNET_EXFIL"

// envKeyReplacer maps flag names like enable-password to ENABLE_PASSWORD.
var envKeyReplacer = strings.NewReplacer("-", "_")

// init registers the persistent flags, binds each of them to a
// TELNET_EXFIL_* environment variable and adds the subcommands.
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgTarget, "target", "t", "", "Device address host[:port] (port defaults to 23)")
	pf.StringVarP(&cfgManifest, "manifest", "m", "", "Path to YAML manifest file")
	pf.StringVarP(&cfgOutPath, "out", "o", "", "Path to output report file")
	pf.StringVarP(&cfgUser, "user", "u", "", "Login user sent at the login prompt")
	pf.StringVar(&cfgPassword, "password", "", "Login password (or set TELNET_EXFIL_PASSWORD)")
	pf.BoolVar(&cfgEnable, "enable", false, "Escalate with \"en\" after login")
	pf.StringVar(&cfgEnablePassword, "enable-password", "", "Enable password (or set TELNET_EXFIL_ENABLE_PASSWORD)")
	pf.StringVar(&cfgHostsFile, "hosts-file", "", "Run against every address in this hosts(5) file (run subcommand)")
	pf.DurationVar(&cfgTimeout, "cmd-timeout", 0, "Per-command timeout (e.g., 30s). 0 disables")
	pf.DurationVar(&cfgConnTimeout, "conn-timeout", 15*time.Second, "Connect and login timeout")
	pf.DurationVar(&cfgIdleTimeout, "idle-timeout", 0, "Report the session idle after this long without data. 0 uses --conn-timeout, negative disables")
	pf.IntVar(&cfgProxyProtocol, "proxy-protocol", 0, "Send a PROXY protocol header (1 or 2) after connecting")
	pf.BoolVar(&cfgSkipBanner, "skip-banner", false, "Do not look for prompts in the first chunk the device sends")
	pf.BoolVar(&cfgNoop, "noop", false, "Do not connect; write planned command lines to debug.out")
	pf.BoolVar(&cfgDebug, "debug", false, "Log session internals to stderr")

	for _, name := range []string{
		"target", "manifest", "out", "user", "password", "enable", "enable-password",
		"hosts-file", "cmd-timeout", "conn-timeout", "idle-timeout", "proxy-protocol",
		"skip-banner", "noop", "debug",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	cobra.OnInitialize(loadEnvOverrides)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(probeCmd)
}

// loadEnvOverrides pulls environment values into the cfg variables. Flags
// given on the command line win because viper reports them first.
func loadEnvOverrides() {
	setString := func(key string, dst *string) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := viper.GetString(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if viper.IsSet(key) {
			*dst = viper.GetBool(key)
		}
	}

	setString("target", &cfgTarget)
	setString("manifest", &cfgManifest)
	setString("out", &cfgOutPath)
	setString("user", &cfgUser)
	setString("password", &cfgPassword)
	setString("enable-password", &cfgEnablePassword)
	setString("hosts-file", &cfgHostsFile)
	setDuration("cmd-timeout", &cfgTimeout)
	setDuration("conn-timeout", &cfgConnTimeout)
	setDuration("idle-timeout", &cfgIdleTimeout)
	if viper.IsSet("proxy-protocol") {
		cfgProxyProtocol = viper.GetInt("proxy-protocol")
	}
	setBool("enable", &cfgEnable)
	setBool("skip-banner", &cfgSkipBanner)
	setBool("noop", &cfgNoop)
	setBool("debug", &cfgDebug)

	if cfgDebug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

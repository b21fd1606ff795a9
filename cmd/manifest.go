package cmd

// manifest models the YAML schema consumed by telnet-exfil: report metadata,
// optional connection and prompt defaults for the device, and the commands
// to execute (which may be empty for a hosts-file only report).
type manifest struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Device      device         `yaml:"device,omitempty"`
	Commands    []commandEntry `yaml:"commands"`
}

// device holds connection defaults used when the matching CLI flag is not
// set. Prompt fields are literal text unless prefixed with "re:".
type device struct {
	Host   string `yaml:"host"`
	User   string `yaml:"user"`
	Enable bool   `yaml:"enable,omitempty"`

	ShellPrompt       string `yaml:"shell_prompt,omitempty"`
	LoginPrompt       string `yaml:"login_prompt,omitempty"`
	PasswordPrompt    string `yaml:"password_prompt,omitempty"`
	FailedLoginPrompt string `yaml:"failed_login_prompt,omitempty"`
	EnablePrompt      string `yaml:"enable_prompt,omitempty"`
	PageSeparator     string `yaml:"page_separator,omitempty"`

	IRS       string `yaml:"irs,omitempty"`
	ORS       string `yaml:"ors,omitempty"`
	EchoLines *int   `yaml:"echo_lines,omitempty"`
}

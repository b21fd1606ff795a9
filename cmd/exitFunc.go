package cmd

import "os"

// exitFunc is os.Exit; tests swap it to capture the exit code.
var exitFunc = os.Exit

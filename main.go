package main

import "telnet-exfil/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/kozaktomas/punchclock/cmd"

func main() {
	cmd.Execute()
}

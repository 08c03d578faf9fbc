package main

import "github.com/slim-sim/slim-sim/cmd"

// main hands control to the cobra command tree in cmd/.
func main() { cmd.Execute() }

// Package main is the entry point for the SQLPilot CLI application.
// It provides a terminal workbench for the SQLPilot REST backend.
package main

import (
	"sqlpilot/cli/cmd"
)

// main initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}

// Package main is the entry point for the Snapcourier CLI application.
// It signs users in to the Snapcourier backend and keeps their session alive.
package main

import (
	"snapcourier/cli/cmd"
)

// main is the entry point for the Snapcourier CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}

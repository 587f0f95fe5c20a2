// Package main is the entry point for the glean CLI.
package main

import (
	"os"

	"github.com/gleanhq/glean/cmd/glean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

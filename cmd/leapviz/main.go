// Package main provides the CLI for the leapviz dataset engine.
package main

import (
	"os"

	"github.com/leapstack-labs/leapviz/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}

// Package main provides the sqledit command.
package main

import (
	"os"

	"github.com/leapstack-labs/sqledit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

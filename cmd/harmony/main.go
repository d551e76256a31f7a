// Package main provides the CLI for the harmony just-intonation playground.
package main

import (
	"os"

	"github.com/maliciousblahaj/harmony-playground/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

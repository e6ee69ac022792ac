// Package main provides the entry point for the playbill CLI tool.
package main

import (
	"github.com/playbill/playbill/cmd/playbill/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}

// Package main provides the entry point for the clinicqr CLI tool.
package main

import (
	"github.com/sejongdental/clinicqr/cmd/clinicqr/cmd"
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

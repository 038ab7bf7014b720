// Copyright IBM Corp. 2023, 2025

package main

import "github.com/hashicorp/go-ipk/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main start go-ipk cli `goipk`
func main() {
	cmd.Run(version, commit, date)
}

// Package main provides the pkdb CLI application.
// pkdb manages the lifecycle of the PlantKeeper SQLite database.
package main

import (
	"os"
)

var (
	// Version is set by build flags
	Version = "dev"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

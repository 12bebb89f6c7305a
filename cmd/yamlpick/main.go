// Package main provides the entry point for the yamlpick CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/yamlpick/cmd/yamlpick/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

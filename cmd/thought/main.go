// Package main provides the entry point for the thought CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thought-cms/thought/cmd/thought/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

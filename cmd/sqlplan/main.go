// Command sqlplan prints the plan compiled for a SQL query against a catalog
// described in YAML.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main is the entry point for the csvmerge CLI binary.
package main

import (
	"os"

	cli "csvmerge/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}

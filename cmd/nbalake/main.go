// Package main is the entry point for the nbalake CLI binary.
package main

import (
	"os"

	"nbalake/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}

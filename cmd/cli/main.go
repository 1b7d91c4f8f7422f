// Package main is the entry point for the catalog-console CLI binary.
package main

import (
	"os"

	"catalog-console/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// Package main provides the entry point for the chatlens server.
package main

import (
	"fmt"
	"os"

	"github.com/markdave123-py/Chatlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package main provides the Born operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/zeroout/cmd/born/cmd"
)

func main() {
	if err := cmd.NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
